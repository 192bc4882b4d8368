package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/modelforge/build"
)

// Catalog entry kinds.
const (
	kindGenerator    = "generator"
	kindCreator      = "creator"
	kindCreationRule = "creation_rule"
	kindOrderRule    = "order_rule"
	kindIgnoreRule   = "ignore_rule"
	kindMapping      = "mapping"
	kindPostBuild    = "post_build"
)

// CatalogEntry is one compiled component, in the order the engine consults it.
type CatalogEntry struct {
	Kind     string `json:"kind" yaml:"kind"`
	Name     string `json:"name" yaml:"name"`
	Priority int    `json:"priority" yaml:"priority"`
}

// CatalogCommand returns the catalog command.
func CatalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "List the compiled generators, creators and rules",
		Flags: append(OutputFlags(),
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: ./modelforge.yaml when present)",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Only list entries of this kind",
			},
		),
		Action: catalogAction,
	}
}

func catalogAction(c *cli.Context) error {
	cfg, _, err := loadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	compiler, err := newCompiler(nil, cfg, nil)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}
	conf, err := compiler.Compile()
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	entries := catalogEntries(conf)
	if kind := c.String("kind"); kind != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Kind == kind {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	r, err := newRenderer(c, c.String("format"), stdout(c))
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}
	return r.Render(entries)
}

// catalogEntries flattens a compiled configuration.
func catalogEntries(conf *build.Configuration) []CatalogEntry {
	var out []CatalogEntry
	for _, m := range conf.TypeMappings() {
		out = append(out, CatalogEntry{Kind: kindMapping, Name: m.String()})
	}
	for _, r := range conf.CreationRules() {
		out = append(out, CatalogEntry{Kind: kindCreationRule, Name: r.String(), Priority: r.Priority()})
	}
	for _, tc := range conf.TypeCreators() {
		out = append(out, CatalogEntry{Kind: kindCreator, Name: describe(tc), Priority: tc.Priority()})
	}
	for _, g := range conf.ValueGenerators() {
		out = append(out, CatalogEntry{Kind: kindGenerator, Name: describe(g), Priority: g.Priority()})
	}
	for _, r := range conf.ExecuteOrderRules() {
		out = append(out, CatalogEntry{Kind: kindOrderRule, Name: r.String(), Priority: r.Priority()})
	}
	for _, r := range conf.IgnoreRules() {
		out = append(out, CatalogEntry{Kind: kindIgnoreRule, Name: r.String()})
	}
	for _, a := range conf.PostBuildActions() {
		out = append(out, CatalogEntry{Kind: kindPostBuild, Name: describe(a), Priority: a.Priority()})
	}
	return out
}

// describe names a component the way build logs do.
func describe(v any) string {
	if n, ok := v.(interface{ Name() string }); ok {
		return n.Name()
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", v)
}
