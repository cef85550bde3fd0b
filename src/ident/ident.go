// Package ident resolves the identity of the calling process for stamping
// into archive headers.
package ident

import (
	"os"
	"os/user"
)

// Identity carries the owner fields recorded in new archive entries.
type Identity struct {
	User  string
	Group string
	UID   int64
	GID   int64
}

// Current resolves the calling process's user and group. Directory lookups
// that fail leave the corresponding name empty; the numeric ids always come
// from the process credentials.
func Current() Identity {
	id := Identity{UID: int64(os.Getuid()), GID: int64(os.Getgid())}
	u, err := user.Current()
	if err != nil {
		return id
	}
	id.User = u.Username
	if g, err := user.LookupGroupId(u.Gid); err == nil {
		id.Group = g.Name
	}
	return id
}
