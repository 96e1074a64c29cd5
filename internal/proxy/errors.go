package proxy

import "github.com/dreamware/dbfs/internal/dbfserr"

var errUnsupportedMutation = dbfserr.NotReady("snapshot proxy does not support topology mutation")
