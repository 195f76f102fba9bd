// Command problemspark runs the ProblemSpark server and its maintenance
// tasks.
//
//	problemspark serve --store memory --seed   # throwaway demo instance
//	problemspark serve --db data/spark.db      # persistent instance
//	problemspark seed --db data/spark.db       # load the sample problems
//
// Every flag can also come from the environment (PORT, STORE, DB_PATH,
// JWT_SECRET, GITHUB_CLIENT_ID, ...) or from a YAML file given with
// --config. Flags win over the environment, which wins over the file.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
