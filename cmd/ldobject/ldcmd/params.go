/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ldcmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ldcommon/jsonld-common-go/pkg/ld/documentloader"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/store"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/store/sqlite"
)

const (
	// log level flag.
	logLevelFlagName  = "log-level"
	logLevelEnvKey    = "LDOBJECT_LOG_LEVEL"
	logLevelFlagUsage = "Log level." +
		" Possible values [INFO] [DEBUG] [ERROR] [WARNING] [CRITICAL] . Defaults to INFO if not set." +
		" Alternatively, this can be set with the following environment variable: " + logLevelEnvKey

	// config file flag.
	configFlagName      = "config"
	configEnvKey        = "LDOBJECT_CONFIG"
	configFlagShorthand = "c"
	configFlagUsage     = "Path to a YAML configuration file. Flags and environment variables take precedence." +
		" Alternatively, this can be set with the following environment variable: " + configEnvKey

	enableHTTPFlagName  = "enable-http"
	enableHTTPEnvKey    = "LDOBJECT_ENABLE_HTTP"
	enableHTTPFlagUsage = "Allow loading unknown contexts over http." +
		" Possible values [true] [false]. Defaults to false if not set." +
		" Alternatively, this can be set with the following environment variable: " + enableHTTPEnvKey

	enableHTTPSFlagName  = "enable-https"
	enableHTTPSEnvKey    = "LDOBJECT_ENABLE_HTTPS"
	enableHTTPSFlagUsage = "Allow loading unknown contexts over https." +
		" Possible values [true] [false]. Defaults to false if not set." +
		" Alternatively, this can be set with the following environment variable: " + enableHTTPSEnvKey

	contextStoreFlagName  = "context-store"
	contextStoreEnvKey    = "LDOBJECT_CONTEXT_STORE"
	contextStoreFlagUsage = "The type of store for context documents. Supported options: mem, sqlite." +
		" Defaults to mem if not set." +
		" Alternatively, this can be set with the following environment variable: " + contextStoreEnvKey

	contextStorePathFlagName  = "context-store-path"
	contextStorePathEnvKey    = "LDOBJECT_CONTEXT_STORE_PATH"
	contextStorePathFlagUsage = "Path of the sqlite database. An in-memory database is used if not set." +
		" Alternatively, this can be set with the following environment variable: " + contextStorePathEnvKey

	extraContextFlagName  = "extra-context"
	extraContextEnvKey    = "LDOBJECT_EXTRA_CONTEXT"
	extraContextFlagUsage = "Context document to preload, in `url=path` format." +
		" This flag can be repeated, allowing multiple contexts." +
		" Alternatively, this can be set with the following environment variable (in CSV format): " +
		extraContextEnvKey

	contextProviderFlagName  = "context-provider-url"
	contextProviderEnvKey    = "LDOBJECT_CONTEXT_PROVIDER_URL"
	contextProviderFlagUsage = "URL of an endpoint serving a batch of context documents to preload." +
		" This flag can be repeated, allowing multiple providers." +
		" Alternatively, this can be set with the following environment variable (in CSV format): " +
		contextProviderEnvKey

	contextStoreMemOption    = "mem"
	contextStoreSQLiteOption = "sqlite"
)

var errInvalidExtraContext = errors.New("extra context must be in url=path format")

// contextStores holds the stores of one run. It provides them to ld.New.
type contextStores struct {
	contexts  store.ContextStore
	providers store.RemoteProviderStore
	close     func()
}

func (s *contextStores) JSONLDContextStore() store.ContextStore {
	return s.contexts
}

func (s *contextStores) JSONLDRemoteProviderStore() store.RemoteProviderStore {
	return s.providers
}

// nolint:gochecknoglobals
var supportedContextStores = map[string]func(path string) (*contextStores, error){
	contextStoreMemOption: func(_ string) (*contextStores, error) {
		p := mem.NewProvider()

		contexts, err := store.NewContextStore(p)
		if err != nil {
			return nil, err
		}

		providers, err := store.NewRemoteProviderStore(p)
		if err != nil {
			return nil, err
		}

		return &contextStores{contexts: contexts, providers: providers, close: func() {}}, nil
	},
	contextStoreSQLiteOption: func(path string) (*contextStores, error) {
		if path == "" {
			path = sqlite.InMemory
		}

		s, err := sqlite.New(path)
		if err != nil {
			return nil, err
		}

		return &contextStores{
			contexts:  s,
			providers: s.RemoteProviders(),
			close: func() {
				if err := s.Close(); err != nil {
					logger.Errorf("close context store: %s", err)
				}
			},
		}, nil
	},
}

func openStores(params *parameters) (*contextStores, error) {
	stores, err := supportedContextStores[params.storeType](params.storePath)
	if err != nil {
		return nil, fmt.Errorf("create %s context store: %w", params.storeType, err)
	}

	return stores, nil
}

type extraContext struct {
	URL  string `yaml:"url"`
	Path string `yaml:"path"`
}

type contextStoreConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

type fileConfig struct {
	LogLevel         string                 `yaml:"logLevel"`
	Network          documentloader.Network `yaml:"network"`
	ContextStore     contextStoreConfig     `yaml:"contextStore"`
	ExtraContexts    []extraContext         `yaml:"extraContexts"`
	ContextProviders []string               `yaml:"contextProviders"`
}

type parameters struct {
	logLevel         string
	network          documentloader.Network
	storeType        string
	storePath        string
	extraContexts    []extraContext
	contextProviders []string
}

func createFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP(logLevelFlagName, "", "", logLevelFlagUsage)
	flags.StringP(configFlagName, configFlagShorthand, "", configFlagUsage)
	flags.StringP(enableHTTPFlagName, "", "", enableHTTPFlagUsage)
	flags.StringP(enableHTTPSFlagName, "", "", enableHTTPSFlagUsage)
	flags.StringP(contextStoreFlagName, "", "", contextStoreFlagUsage)
	flags.StringP(contextStorePathFlagName, "", "", contextStorePathFlagUsage)
	flags.StringSliceP(extraContextFlagName, "", []string{}, extraContextFlagUsage)
	flags.StringSliceP(contextProviderFlagName, "", []string{}, contextProviderFlagUsage)
}

func getParameters(cmd *cobra.Command) (*parameters, error) { //nolint:funlen,gocyclo
	configPath, err := getUserSetVar(cmd, configFlagName, configEnvKey, true)
	if err != nil {
		return nil, err
	}

	params := &parameters{storeType: contextStoreMemOption}

	if configPath != "" {
		if err = params.loadConfig(configPath); err != nil {
			return nil, err
		}
	}

	logLevel, err := getUserSetVar(cmd, logLevelFlagName, logLevelEnvKey, true)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		params.logLevel = logLevel
	}

	if err = getBoolVar(cmd, enableHTTPFlagName, enableHTTPEnvKey, &params.network.HTTP); err != nil {
		return nil, err
	}

	if err = getBoolVar(cmd, enableHTTPSFlagName, enableHTTPSEnvKey, &params.network.HTTPS); err != nil {
		return nil, err
	}

	storeType, err := getUserSetVar(cmd, contextStoreFlagName, contextStoreEnvKey, true)
	if err != nil {
		return nil, err
	}

	if storeType != "" {
		params.storeType = storeType
	}

	if _, ok := supportedContextStores[params.storeType]; !ok {
		return nil, fmt.Errorf("context store type not supported: %s", params.storeType)
	}

	storePath, err := getUserSetVar(cmd, contextStorePathFlagName, contextStorePathEnvKey, true)
	if err != nil {
		return nil, err
	}

	if storePath != "" {
		params.storePath = storePath
	}

	extraContexts, err := getUserSetVars(cmd, extraContextFlagName, extraContextEnvKey, true)
	if err != nil {
		return nil, err
	}

	for _, entry := range extraContexts {
		ec, err := parseExtraContext(entry)
		if err != nil {
			return nil, err
		}

		params.extraContexts = append(params.extraContexts, ec)
	}

	providers, err := getUserSetVars(cmd, contextProviderFlagName, contextProviderEnvKey, true)
	if err != nil {
		return nil, err
	}

	params.contextProviders = append(params.contextProviders, providers...)

	return params, nil
}

func (p *parameters) loadConfig(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	p.logLevel = cfg.LogLevel
	p.network = cfg.Network
	p.extraContexts = cfg.ExtraContexts
	p.contextProviders = cfg.ContextProviders

	if cfg.ContextStore.Type != "" {
		p.storeType = cfg.ContextStore.Type
	}

	p.storePath = cfg.ContextStore.Path

	return nil
}

func parseExtraContext(entry string) (extraContext, error) {
	u, path, found := strings.Cut(entry, "=")
	if !found || u == "" || path == "" {
		return extraContext{}, fmt.Errorf("%w: %s", errInvalidExtraContext, entry)
	}

	return extraContext{URL: u, Path: path}, nil
}

func getBoolVar(cmd *cobra.Command, flagName, envKey string, target *bool) error {
	value, err := getUserSetVar(cmd, flagName, envKey, true)
	if err != nil || value == "" {
		return err
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", flagName, err)
	}

	*target = b

	return nil
}

func getUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	if isOptional || isSet {
		return value, nil
	}

	return "", errors.New("Neither " + flagName + " (command line flag) nor " + envKey +
		" (environment variable) have been set.")
}

func getUserSetVars(cmd *cobra.Command, flagName, envKey string, isOptional bool) ([]string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetStringSlice(flagName)
		if err != nil {
			return nil, fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	var values []string

	if isSet && value != "" {
		values = strings.Split(value, ",")
	}

	if isOptional || isSet {
		return values, nil
	}

	return nil, fmt.Errorf(" %s not set. "+
		"It must be set via either command line or environment variable", flagName)
}

func setLogLevel(logLevel string) error {
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("failed to parse log level '%s' : %w", logLevel, err)
		}

		log.SetLevel("", level)

		logger.Debugf("logger level set to %s", logLevel)
	}

	return nil
}
