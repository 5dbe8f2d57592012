// Package jsonconf parses JSON configuration trees with composition
// through $include directives. An object carrying the key "$include" is
// replaced wholesale by the referenced file (string value) or by the
// top-level merge of several files (array value, later files winning).
// Included files may include further files; paths resolve relative to the
// file that names them.
package jsonconf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrIncludeCycle = errors.New("include cycle detected")
	ErrBadInclude   = errors.New("include directive must be a string or array of strings")
)

// includeKey marks an object for replacement by its referenced file(s).
const includeKey = "$include"

// FileReader loads the raw bytes of an included file. Injectable so tests
// and embedded deployments can serve files from memory.
type FileReader func(path string) ([]byte, error)

// Parser builds Node trees and resolves includes. Each loaded file is
// parsed once and cached by resolved path, so a file included from many
// places costs one read. A parser is not safe for concurrent use.
type Parser struct {
	reader   FileReader
	cache    map[string]*Node
	visiting map[string]bool
}

// NewParser returns a parser reading includes from the filesystem.
func NewParser() *Parser {
	return NewParserWithReader(os.ReadFile)
}

// NewParserWithReader returns a parser loading includes through reader.
func NewParserWithReader(reader FileReader) *Parser {
	return &Parser{
		reader:   reader,
		cache:    make(map[string]*Node),
		visiting: make(map[string]bool),
	}
}

// ParseFile loads and parses path. Includes inside resolve relative to
// path's directory.
func (p *Parser) ParseFile(path string) (*Node, error) {
	content, err := p.reader(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return p.Parse(content, path)
}

// Parse parses raw JSON. basePath is the path of the file the data came
// from and anchors relative includes; empty means includes resolve as
// written.
func (p *Parser) Parse(data []byte, basePath string) (*Node, error) {
	iter := jsoniter.ParseBytes(jsoniter.ConfigCompatibleWithStandardLibrary, data)

	node, err := p.buildNode(iter, basePath)
	if err != nil {
		return nil, err
	}
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, fmt.Errorf("parse config: %w", iter.Error)
	}
	return node, nil
}

func (p *Parser) buildNode(iter *jsoniter.Iterator, basePath string) (*Node, error) {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return NewNull(), nil

	case jsoniter.StringValue:
		return NewString(iter.ReadString()), nil

	case jsoniter.NumberValue:
		return NewNumber(iter.ReadFloat64()), nil

	case jsoniter.BoolValue:
		return NewBool(iter.ReadBool()), nil

	case jsoniter.ArrayValue:
		arr := NewArray()
		var err error
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			var el *Node
			if el, err = p.buildNode(it, basePath); err != nil {
				return false
			}
			arr.Append(el)
			return true
		})
		if err != nil {
			return nil, err
		}
		return arr, nil

	case jsoniter.ObjectValue:
		obj := NewObject()
		var err error
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			var child *Node
			if child, err = p.buildNode(it, basePath); err != nil {
				return false
			}
			obj.Add(key, child)
			return true
		})
		if err != nil {
			return nil, err
		}
		if directive := obj.Children[includeKey]; directive != nil {
			return p.processInclude(directive, basePath)
		}
		return obj, nil

	default:
		return nil, fmt.Errorf("parse config: unexpected token")
	}
}

// processInclude turns a directive node into the subtree that replaces
// the directive's whole object.
func (p *Parser) processInclude(directive *Node, basePath string) (*Node, error) {
	switch directive.Type {
	case StringNode:
		loaded, err := p.loadInclude(resolvePath(directive.Str, basePath))
		if err != nil {
			return nil, err
		}
		marked := *loaded
		marked.Included = true
		marked.IncludePath = directive.Str
		return &marked, nil

	case ArrayNode:
		merged := NewObject()
		for _, el := range directive.Elements {
			if el.Type != StringNode {
				continue
			}
			loaded, err := p.loadInclude(resolvePath(el.Str, basePath))
			if err != nil {
				return nil, err
			}
			if loaded.Type != ObjectNode {
				continue
			}
			for k, v := range loaded.Children {
				merged.Children[k] = v
			}
		}
		merged.Included = true
		return merged, nil

	default:
		return nil, ErrBadInclude
	}
}

// loadInclude parses the file at the resolved path, consulting the cache
// and refusing cycles.
func (p *Parser) loadInclude(path string) (*Node, error) {
	if node, ok := p.cache[path]; ok {
		return node, nil
	}
	if p.visiting[path] {
		return nil, fmt.Errorf("%w: %s", ErrIncludeCycle, path)
	}
	p.visiting[path] = true
	defer delete(p.visiting, path)

	content, err := p.reader(path)
	if err != nil {
		return nil, fmt.Errorf("load included file %s: %w", path, err)
	}
	node, err := p.Parse(content, path)
	if err != nil {
		return nil, fmt.Errorf("parse included file %s: %w", path, err)
	}
	p.cache[path] = node
	return node, nil
}

// resolvePath anchors include at the directory of basePath. Absolute
// paths and scheme-qualified references pass through untouched.
func resolvePath(include, basePath string) string {
	if include == "" {
		return include
	}
	if filepath.IsAbs(include) || strings.Contains(include, "://") {
		return include
	}
	if basePath == "" {
		return include
	}
	return filepath.Join(filepath.Dir(basePath), include)
}
