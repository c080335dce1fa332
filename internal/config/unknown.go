package config

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// detectUnknownFields walks the parsed document against the Config struct
// and reports mapping keys no field is tagged with.
func detectUnknownFields(doc *yaml.Node) []string {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	var warnings []string
	walkUnknown(root, reflect.TypeOf(Config{}), "", &warnings)
	return warnings
}

func walkUnknown(n *yaml.Node, t reflect.Type, path string, warnings *[]string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case t.Kind() == reflect.Struct && n.Kind == yaml.MappingNode:
		known := getYAMLFields(t)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			field, ok := known[key]
			if !ok {
				*warnings = append(*warnings, fmt.Sprintf("unknown field %q %s(ignored)", key, location(path)))
				continue
			}
			walkUnknown(n.Content[i+1], field, join(path, key), warnings)
		}
	case t.Kind() == reflect.Slice && n.Kind == yaml.SequenceNode:
		for i, item := range n.Content {
			walkUnknown(item, t.Elem(), fmt.Sprintf("%s[%d]", path, i), warnings)
		}
	case t.Kind() == reflect.Map && n.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			walkUnknown(n.Content[i+1], t.Elem(), join(path, n.Content[i].Value), warnings)
		}
	}
}

func location(path string) string {
	if path == "" {
		return "at root level "
	}
	return fmt.Sprintf("in %s ", path)
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// getYAMLFields returns the field types of a struct keyed by YAML name.
func getYAMLFields(t reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		// Extract field name from tag (before comma)
		name := strings.Split(tag, ",")[0]
		if name != "" {
			fields[name] = field.Type
		}
	}
	return fields
}
