package engine

import (
	tok "github.com/goyaml11/yaml11/internal/token"
)

var DefaultTagDirectives = []tok.TagDirective{
	{Handle: []byte("!"), Prefix: []byte("!")},
	{Handle: []byte("!!"), Prefix: []byte("tag:yaml.org,2002:")},
}
