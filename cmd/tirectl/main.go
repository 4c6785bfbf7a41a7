// Command tirectl scores a tire offline from declared attributes and vision
// tags, without calling any external service.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
