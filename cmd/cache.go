package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/namedcache/namedcache/api"
	"github.com/namedcache/namedcache/cache"
	"github.com/namedcache/namedcache/log"
	"github.com/namedcache/namedcache/registry"
	"github.com/namedcache/namedcache/util"

	"github.com/spf13/cobra"
)

type codeWithStatus interface {
	StatusCode() int
	Status() string
}

type apiResponse struct {
	statusCode int
	status     string
	body       []byte
}

func (r apiResponse) StatusCode() int {
	return r.statusCode
}

func (r apiResponse) Status() string {
	return r.status
}

func newCacheCommand() *cobra.Command {
	c := &cobra.Command{
		Use:               "cache",
		Short:             "Performs cache operations",
		PersistentPreRunE: initConfigPreRun,
	}

	flushCmd := &cobra.Command{
		Use:     "flush [container]",
		Args:    cobra.MaximumNArgs(1),
		Aliases: []string{"clear"},
		Short:   "Flush a container, one of its entries or the whole cache",
		RunE:    flushCache,
	}
	flushCmd.Flags().StringP("entry", "e", "", "flush only this entry of the container")

	c.AddCommand(
		&cobra.Command{
			Use:   "describe",
			Args:  cobra.NoArgs,
			Short: "Print the description of all containers",
			RunE:  describeCache,
		},
		flushCmd,
		&cobra.Command{
			Use:   "status",
			Args:  cobra.NoArgs,
			Short: "Print the caching status",
			RunE:  cacheStatus,
		},
		&cobra.Command{
			Use:   "enable",
			Args:  cobra.NoArgs,
			Short: "Enable caching",
			RunE:  enableCache,
		},
		&cobra.Command{
			Use:   "disable",
			Args:  cobra.NoArgs,
			Short: "Disable caching",
			RunE:  disableCache,
		},
		&cobra.Command{
			Use:   "refresh",
			Args:  cobra.NoArgs,
			Short: "Replace all stale containers",
			RunE:  refreshCache,
		},
		&cobra.Command{
			Use:   "keys <store>",
			Args:  cobra.ExactArgs(1),
			Short: "List the live keys of a key/value store",
			RunE:  storeKeys,
		},
		&cobra.Command{
			Use:   "prefix <store> <prefix>",
			Args:  cobra.ExactArgs(2), //nolint:gomnd
			Short: "List the strings of a prefix store sharing a prefix",
			RunE:  prefixQuery,
		},
	)

	return c
}

func callAPI(method, path string) (apiResponse, error) {
	req, err := http.NewRequest(method, apiURL(path), nil)
	if err != nil {
		return apiResponse{}, fmt.Errorf("can't create request: %w", err)
	}

	resp, err := util.NewHTTPClient(apiTimeout).Do(req)
	if err != nil {
		return apiResponse{}, fmt.Errorf("can't execute %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiResponse{}, fmt.Errorf("can't read response: %w", err)
	}

	return apiResponse{statusCode: resp.StatusCode, status: resp.Status, body: body}, nil
}

func printOkOrError(resp codeWithStatus, body string) error {
	if resp.StatusCode() == http.StatusOK {
		log.Log().Info("OK")

		return nil
	}

	return fmt.Errorf("response NOK, %s %s", resp.Status(), strings.TrimSpace(body))
}

func decodeResult(resp apiResponse, target any) error {
	if err := printOkOrError(resp, string(resp.body)); err != nil {
		return err
	}

	if err := json.Unmarshal(resp.body, target); err != nil {
		return fmt.Errorf("can't parse response: %w", err)
	}

	return nil
}

func describeCache(cmd *cobra.Command, _ []string) error {
	resp, err := callAPI(http.MethodGet, api.PathCache)
	if err != nil {
		return err
	}

	var description registry.Description

	if err := decodeResult(resp, &description); err != nil {
		return err
	}

	var out bytes.Buffer

	if err := json.Indent(&out, resp.body, "", "  "); err != nil {
		return fmt.Errorf("can't format response: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), out.String())

	log.Log().Infof("%d stores, %d prefix stores", len(description.Stores), len(description.PrefixStores))

	return nil
}

func flushCache(cmd *cobra.Command, args []string) error {
	entry, _ := cmd.Flags().GetString("entry")

	query := url.Values{}

	switch {
	case len(args) > 0:
		query.Set(cache.FlushParam, args[0])

		if entry != "" {
			query.Set(cache.EntryParam, entry)
		}

	case entry != "":
		return errors.New("flushing an entry requires the container name")

	default:
		query.Set(api.FlushAllParam, "true")
	}

	resp, err := callAPI(http.MethodGet, api.PathCache+"?"+query.Encode())
	if err != nil {
		return err
	}

	return printOkOrError(resp, string(resp.body))
}

func cacheStatus(_ *cobra.Command, _ []string) error {
	resp, err := callAPI(http.MethodGet, api.PathCacheStatus)
	if err != nil {
		return err
	}

	var status api.CacheStatus

	if err := decodeResult(resp, &status); err != nil {
		return err
	}

	if status.Enabled {
		log.Log().Info("caching is enabled")
	} else {
		log.Log().Info("caching is disabled")
	}

	log.Log().Infof("timestamp: %s", status.Timestamp)
	log.Log().Infof("stores: %s", strings.Join(quoted(status.Stores), ", "))
	log.Log().Infof("prefix stores: %s", strings.Join(quoted(status.PrefixStores), ", "))

	return nil
}

func quoted(names []string) []string {
	return util.ConvertEach(names, func(name string) string {
		return fmt.Sprintf("'%s'", name)
	})
}

func enableCache(_ *cobra.Command, _ []string) error {
	resp, err := callAPI(http.MethodGet, api.PathCacheEnable)
	if err != nil {
		return err
	}

	return printOkOrError(resp, string(resp.body))
}

func disableCache(_ *cobra.Command, _ []string) error {
	resp, err := callAPI(http.MethodGet, api.PathCacheDisable)
	if err != nil {
		return err
	}

	return printOkOrError(resp, string(resp.body))
}

func refreshCache(_ *cobra.Command, _ []string) error {
	resp, err := callAPI(http.MethodPost, api.PathCacheRefresh)
	if err != nil {
		return err
	}

	return printOkOrError(resp, string(resp.body))
}

func storeKeys(cmd *cobra.Command, args []string) error {
	path := strings.Replace(api.PathStoreKeys, "{name}", url.PathEscape(args[0]), 1)

	resp, err := callAPI(http.MethodGet, path)
	if err != nil {
		return err
	}

	var result api.KeysResult

	if err := decodeResult(resp, &result); err != nil {
		return err
	}

	for _, k := range result.Keys {
		fmt.Fprintln(cmd.OutOrStdout(), k)
	}

	return nil
}

func prefixQuery(cmd *cobra.Command, args []string) error {
	path := strings.Replace(api.PathPrefixQuery, "{name}", url.PathEscape(args[0]), 1)
	path += "?prefix=" + url.QueryEscape(args[1])

	resp, err := callAPI(http.MethodGet, path)
	if err != nil {
		return err
	}

	var result api.PrefixResult

	if err := decodeResult(resp, &result); err != nil {
		return err
	}

	for _, v := range result.Values {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}

	return nil
}
