/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ldcmd implements the commands of the ldobject tool.
package ldcmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/piprate/json-gold/ld"
	"github.com/spf13/cobra"

	"github.com/ldcommon/jsonld-common-go/pkg/doc/jsonld"
)

const (
	contextFlagName         = "context"
	typeFlagName            = "type"
	idFlagName              = "id"
	propertyFlagName        = "property"
	credentialFlagName      = "credential"
	defaultContextsFlagName = "default-contexts"
	defaultTypesFlagName    = "default-types"
	algorithmFlagName       = "algorithm"

	defaultAlgorithm = "urdna2015"
)

var logger = log.New("jsonld-common/ldobject")

// Cmd returns the root command of the ldobject tool.
func Cmd() *cobra.Command {
	var params *parameters

	rootCmd := &cobra.Command{
		Use:   "ldobject",
		Short: "Build and process JSON-LD objects",
		Long:  "Build JSON-LD objects and credentials and convert them to RDF",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error

			params, err = getParameters(cmd)
			if err != nil {
				return err
			}

			return setLogLevel(params.logLevel)
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	createFlags(rootCmd)

	getParams := func() *parameters { return params }

	rootCmd.AddCommand(
		createBuildCmd(getParams),
		createNQuadsCmd(getParams),
		createNormalizeCmd(getParams),
		createValidateCmd(getParams),
		createContextsCmd(getParams),
	)

	return rootCmd
}

// withLoader runs f with the document loader configured for the command.
func withLoader(cmd *cobra.Command, params *parameters, f func(loader ld.DocumentLoader) error) error {
	loader, closeStore, err := newDocumentLoader(cmd.Context(), params)
	if err != nil {
		return err
	}

	defer closeStore()

	return f(loader)
}

func createBuildCmd(getParams func() *parameters) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a JSON-LD object",
		Long:  "Build a JSON-LD object or credential, print it and the size of its RDF dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLoader(cmd, getParams(), func(loader ld.DocumentLoader) error {
				o, err := buildObject(cmd, loader)
				if err != nil {
					return err
				}

				out, err := o.ToJSONIndent("", "  ")
				if err != nil {
					return err
				}

				dataset, err := o.ToDataset()
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\ndataset size: %d\n", out, dataset.Size())

				return nil
			})
		},
	}

	cmd.Flags().StringSlice(contextFlagName, []string{}, "Context URI. This flag can be repeated.")
	cmd.Flags().StringSlice(typeFlagName, []string{}, "Type. This flag can be repeated.")
	cmd.Flags().String(idFlagName, "", "Node identifier of the object.")
	cmd.Flags().StringArray(propertyFlagName, []string{},
		"Property in `name=value` format. Values that parse as JSON are added as JSON. This flag can be repeated.")
	cmd.Flags().Bool(credentialFlagName, false, "Build a verifiable credential.")
	cmd.Flags().Bool(defaultContextsFlagName, false, "Prepend the default contexts of the object kind.")
	cmd.Flags().Bool(defaultTypesFlagName, false, "Prepend the default types of the object kind.")

	return cmd
}

func buildObject(cmd *cobra.Command, loader ld.DocumentLoader) (*jsonld.Object, error) {
	flags := cmd.Flags()

	contexts, err := flags.GetStringSlice(contextFlagName)
	if err != nil {
		return nil, err
	}

	types, err := flags.GetStringSlice(typeFlagName)
	if err != nil {
		return nil, err
	}

	id, err := flags.GetString(idFlagName)
	if err != nil {
		return nil, err
	}

	rawProperties, err := flags.GetStringArray(propertyFlagName)
	if err != nil {
		return nil, err
	}

	properties, err := parseProperties(rawProperties)
	if err != nil {
		return nil, err
	}

	credential, err := flags.GetBool(credentialFlagName)
	if err != nil {
		return nil, err
	}

	defaultContexts, err := flags.GetBool(defaultContextsFlagName)
	if err != nil {
		return nil, err
	}

	defaultTypes, err := flags.GetBool(defaultTypesFlagName)
	if err != nil {
		return nil, err
	}

	if credential {
		c, err := jsonld.NewCredentialBuilder().
			Contexts(contexts...).
			Types(types...).
			ID(id).
			OrderedProperties(properties).
			DefaultContexts(defaultContexts).
			DefaultTypes(defaultTypes).
			DocumentLoader(loader).
			Build()
		if err != nil {
			return nil, err
		}

		return c.Object, nil
	}

	return jsonld.NewBuilder().
		Contexts(contexts...).
		Types(types...).
		ID(id).
		OrderedProperties(properties).
		DefaultContexts(defaultContexts).
		DefaultTypes(defaultTypes).
		DocumentLoader(loader).
		Build()
}

func parseProperties(raw []string) (*jsonld.Properties, error) {
	properties := jsonld.NewProperties()

	for _, entry := range raw {
		name, value, found := strings.Cut(entry, "=")
		if !found {
			return nil, fmt.Errorf("property must be in name=value format: %s", entry)
		}

		var v interface{}
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}

		properties.Set(name, v)
	}

	return properties, nil
}

func createNQuadsCmd(getParams func() *parameters) *cobra.Command {
	return &cobra.Command{
		Use:   "nquads <file>",
		Short: "Print the RDF dataset of a JSON-LD document",
		Long:  "Print the RDF dataset of a JSON-LD document in N-Quads format, without canonicalization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLoader(cmd, getParams(), func(loader ld.DocumentLoader) error {
				o, err := readObject(args[0])
				if err != nil {
					return err
				}

				nquads, err := o.ToNQuads(jsonld.WithDocumentLoader(loader))
				if err != nil {
					return err
				}

				_, err = io.WriteString(cmd.OutOrStdout(), nquads)

				return err
			})
		},
	}
}

func createNormalizeCmd(getParams func() *parameters) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Print the canonical N-Quads of a JSON-LD document",
		Long:  "Print the canonical N-Quads of a JSON-LD document. Supported algorithms: urdna2015, RDFC-1.0",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			algorithm, err := cmd.Flags().GetString(algorithmFlagName)
			if err != nil {
				return err
			}

			return withLoader(cmd, getParams(), func(loader ld.DocumentLoader) error {
				o, err := readObject(args[0])
				if err != nil {
					return err
				}

				canonical, err := o.Normalize(algorithm, jsonld.WithDocumentLoader(loader))
				if err != nil {
					return err
				}

				_, err = io.WriteString(cmd.OutOrStdout(), canonical)

				return err
			})
		},
	}

	cmd.Flags().String(algorithmFlagName, defaultAlgorithm, "Canonicalization algorithm.")

	return cmd
}

func createValidateCmd(getParams func() *parameters) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a JSON-LD document",
		Long:  "Check that every term of a JSON-LD document is defined by its contexts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLoader(cmd, getParams(), func(loader ld.DocumentLoader) error {
				o, err := readObject(args[0])
				if err != nil {
					return err
				}

				if err := o.Validate(jsonld.WithDocumentLoader(loader)); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])

				return nil
			})
		},
	}
}

func readObject(path string) (*jsonld.Object, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("read JSON-LD document: %w", err)
	}

	return jsonld.FromJSON(data)
}
