// Command cqlread is a thin CLI over the reader/planner/executor stack:
// it parses flags, builds a Statement, plans and executes it, and formats
// the result. The query engine itself lives entirely under internal/.
package main

import (
	"os"

	"github.com/pmcfadin/cqlite-sub003/cmd/cqlread/app"
)

func main() {
	os.Exit(app.Execute(os.Args[1:]))
}
