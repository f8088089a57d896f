// advise pulls crypto news, tags the coins each article mentions and asks a
// language model for a sentiment estimate.
package main

import (
	"os"

	"github.com/corey/goodadvice/cmd/advise/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if code := cmd.ExitCode(err); code >= 0 {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
