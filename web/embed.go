// Package web holds the embedded chat UI served at /.
package web

import _ "embed"

//go:embed chat.html
var ChatHTML string
