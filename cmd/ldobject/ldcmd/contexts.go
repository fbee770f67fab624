/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ldcmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ldcommon/jsonld-common-go/pkg/ld"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/store"
)

// providerID is printed by add-provider.
type providerID struct {
	ID string `json:"id"`
}

// providersResponse is printed by list.
type providersResponse struct {
	Providers []store.RemoteProviderRecord `json:"providers"`
}

func createContextsCmd(getParams func() *parameters) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contexts",
		Short: "Manage stored context documents",
		Long: "Add context documents and remote context providers to the context store." +
			" Use --context-store sqlite with --context-store-path to keep them between runs.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	cmd.AddCommand(
		createAddContextsCmd(getParams),
		createAddProviderCmd(getParams),
		createRefreshProviderCmd(getParams),
		createDeleteProviderCmd(getParams),
		createListProvidersCmd(getParams),
	)

	return cmd
}

// withService runs f with a context service over the stores configured for the command.
func withService(params *parameters, f func(svc ld.Service) error) error {
	stores, err := openStores(params)
	if err != nil {
		return err
	}

	defer stores.close()

	return f(ld.New(stores))
}

func createAddContextsCmd(getParams func() *parameters) *cobra.Command {
	return &cobra.Command{
		Use:   "add url=path...",
		Short: "Store context documents read from files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := make([]extraContext, 0, len(args))

			for _, arg := range args {
				ec, err := parseExtraContext(arg)
				if err != nil {
					return err
				}

				entries = append(entries, ec)
			}

			docs, err := readContextFiles(entries)
			if err != nil {
				return err
			}

			return withService(getParams(), func(svc ld.Service) error {
				if err := svc.AddContexts(docs); err != nil {
					return err
				}

				logger.Debugf("Stored %d context documents", len(docs))

				return nil
			})
		},
	}
}

func createAddProviderCmd(getParams func() *parameters) *cobra.Command {
	return &cobra.Command{
		Use:   "add-provider endpoint",
		Short: "Save a remote context provider and store its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(getParams(), func(svc ld.Service) error {
				id, err := svc.AddRemoteProvider(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				return printJSON(cmd, &providerID{ID: id})
			})
		},
	}
}

func createRefreshProviderCmd(getParams func() *parameters) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [provider-id]",
		Short: "Fetch the documents of one saved provider again, or of all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(getParams(), func(svc ld.Service) error {
				if len(args) == 0 {
					return svc.RefreshAllRemoteProviders(cmd.Context())
				}

				return svc.RefreshRemoteProvider(cmd.Context(), args[0])
			})
		},
	}
}

func createDeleteProviderCmd(getParams func() *parameters) *cobra.Command {
	return &cobra.Command{
		Use:   "delete provider-id",
		Short: "Delete a saved provider and the documents it serves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(getParams(), func(svc ld.Service) error {
				return svc.DeleteRemoteProvider(cmd.Context(), args[0])
			})
		},
	}
}

func createListProvidersCmd(getParams func() *parameters) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved remote providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(getParams(), func(svc ld.Service) error {
				records, err := svc.GetAllRemoteProviders()
				if err != nil {
					return err
				}

				return printJSON(cmd, &providersResponse{Providers: records})
			})
		},
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(b))

	return nil
}
