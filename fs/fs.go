package appfs

import "embed"

// FS holds the application assets shipped with the binary: goose migrations
// and email templates.
//
//go:embed migrations templates templates/email/_base.txt templates/email/_base.gohtml
var FS embed.FS
