// Package walk supplies the traversal order used when packing directory
// trees: lexically sorted, every directory visited before its contents,
// symlinks listed but never followed.
package walk

import (
	"github.com/karrick/godirwalk"
)

// List walks the tree rooted at root, calling fn with root itself first and
// then every nested path in lexical order. An error from fn or from the
// underlying walk halts the traversal.
func List(root string, fn func(path string) error) error {
	return godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(osPathname string, _ *godirwalk.Dirent) error {
			return fn(osPathname)
		},
		ErrorCallback: func(_ string, _ error) godirwalk.ErrorAction {
			return godirwalk.Halt
		},
	})
}
