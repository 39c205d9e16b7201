package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casework/CASE-Utility-Verifier/nlggen"
	"github.com/casework/CASE-Utility-Verifier/ontology"
	"github.com/casework/CASE-Utility-Verifier/xsdcheck"
)

func newXSDCmd(a *app) *cobra.Command {
	var (
		out        string
		noValidate bool
	)
	cmd := &cobra.Command{
		Use:   "xsd [ontology.ttl]",
		Short: "Write an XSD schema of property ranges and prune the lines the validator rejects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Ontology = args[0]
			}
			if cmd.Flags().Changed("out") {
				cfg.XSD.File = out
			}
			if cfg.Ontology == "" {
				return errors.New("no ontology given: pass a path or set ontology in nlggen.yaml")
			}

			h, err := ontology.Load(cfg.Ontology)
			if err != nil {
				return err
			}
			diags := nlggen.NewDiagnostics()
			types := xsdcheck.SchemaTypes(nlggen.BuildHierarchy(h, cfg.GenerateConfig().Plan.Roots, diags))
			diags.Log(a.logger)
			if err := xsdcheck.WriteSchemaFile(cfg.XSD.File, types); err != nil {
				return err
			}

			st := newStyles(a.stdout)
			fmt.Fprintf(a.stdout, "%s %s (%d elements)\n", st.title.Render("Wrote"), cfg.XSD.File, len(types))
			if noValidate {
				return nil
			}
			removed, err := xsdcheck.New(cfg.XSD.File, cfg.XSD.Validator, a.logger).StripInvalid(cmd.Context())
			for _, line := range removed {
				fmt.Fprintf(a.stdout, "  %s %s\n", st.gone.Render("removed"), line)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "schema file (default from config)")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "write the schema without running the validator")
	cmd.AddCommand(newXSDValidateCmd(a))
	return cmd
}

func newXSDValidateCmd(a *app) *cobra.Command {
	var schema string
	cmd := &cobra.Command{
		Use:   "validate <element> <value>",
		Short: "Check one value against an element of the schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("schema") {
				cfg.XSD.File = schema
			}
			ok, err := xsdcheck.New(cfg.XSD.File, cfg.XSD.Validator, a.logger).Validate(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			st := newStyles(a.stdout)
			if !ok {
				return fmt.Errorf("%q is not a valid %s", args[1], args[0])
			}
			fmt.Fprintln(a.stdout, st.ok.Render("valid"))
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "schema file (default from config)")
	return cmd
}
