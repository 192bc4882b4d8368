package cmd

import (
	"reflect"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/modelforge/sample"
)

// TypeInfo describes one registered type.
type TypeInfo struct {
	Name   string `json:"name" yaml:"name"`
	GoType string `json:"go_type" yaml:"go_type"`
	Kind   string `json:"kind" yaml:"kind"`
	Fields int    `json:"fields" yaml:"fields"`
}

// TypesCommand returns the types command.
func TypesCommand() *cli.Command {
	return &cli.Command{
		Name:   "types",
		Usage:  "List the types generate can build",
		Flags:  OutputFlags(),
		Action: typesAction,
	}
}

func typesAction(c *cli.Context) error {
	r, err := newRenderer(c, c.String("format"), stdout(c))
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}
	return r.Render(listTypes())
}

// listTypes returns the sample registry in name order.
func listTypes() []TypeInfo {
	registry := sample.Types()
	out := make([]TypeInfo, 0, len(registry))
	for _, name := range sample.Names() {
		t := registry[name]
		base := t
		if base.Kind() == reflect.Pointer {
			base = base.Elem()
		}
		info := TypeInfo{Name: name, GoType: t.String(), Kind: base.Kind().String()}
		if base.Kind() == reflect.Struct {
			for i := range base.NumField() {
				if base.Field(i).IsExported() {
					info.Fields++
				}
			}
		}
		out = append(out, info)
	}
	return out
}
