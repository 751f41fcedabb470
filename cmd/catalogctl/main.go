// Command catalogctl is the operator CLI for catalog backups and the audit
// trail. It opens the same database and Redis as the API server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(openApp).Execute(); err != nil {
		os.Exit(1)
	}
}
