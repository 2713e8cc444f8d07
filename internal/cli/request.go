package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-cms-client/internal/app"
	"github.com/samvad-hq/samvad-cms-client/internal/logger"
	"github.com/samvad-hq/samvad-cms-client/internal/profiles"
	"github.com/samvad-hq/samvad-cms-client/pkg/restclient"
)

var (
	endpointFlag string
	formatFlag   string
	rawOutput    bool
	rawParams    []string
	headerFlags  []string
	dataFlag     string
	timeoutFlag  time.Duration
)

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Fetch a resource",
	Example: `  cmsctl get node/42
  cmsctl get node -p pagesize=10 -p 'fields[]=nid,title'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGet,
}

var postCmd = &cobra.Command{
	Use:   "post <path>",
	Short: "Create a resource",
	Example: `  cmsctl post node -d '{"type":"page","title":"hello"}'
  cmsctl post node -d @node.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPost,
}

var putCmd = &cobra.Command{
	Use:   "put <path>",
	Short: "Update a resource",
	Example: `  cmsctl put node/42 -d '{"title":"renamed"}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPut,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <path>",
	Short: "Delete a resource",
	Example: `  cmsctl delete node/42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

func init() {
	for _, cmd := range []*cobra.Command{getCmd, postCmd, putCmd, deleteCmd} {
		cmd.Flags().StringVar(&endpointFlag, "endpoint", "", "Ad hoc endpoint URL, bypassing the profile base")
		cmd.Flags().StringVar(&formatFlag, "format", "", "Body format override (json, gob or none)")
		cmd.Flags().BoolVar(&rawOutput, "raw", false, "Print the raw response body without re-rendering")
		cmd.Flags().StringArrayVarP(&rawParams, "param", "p", nil, "Query parameter key=value, or key[]=v1,v2 for lists (repeatable)")
		cmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, "Extra request header 'Name: Value' (repeatable)")
		cmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "Per call timeout override")
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{postCmd, putCmd} {
		cmd.Flags().StringVarP(&dataFlag, "data", "d", "", "Request body: inline text, @file or @- for stdin")
	}
}

func runGet(_ *cobra.Command, args []string) error    { return runRequest(http.MethodGet, args) }
func runPost(_ *cobra.Command, args []string) error   { return runRequest(http.MethodPost, args) }
func runPut(_ *cobra.Command, args []string) error    { return runRequest(http.MethodPut, args) }
func runDelete(_ *cobra.Command, args []string) error { return runRequest(http.MethodDelete, args) }

// runRequest executes one REST call for the given verb and prints the
// result to stdout.
func runRequest(method string, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()
	defer a.Close()

	p, err := a.Profile(profileName)
	if err != nil {
		return err
	}
	if formatFlag != "" {
		p.Format = strings.ToLower(strings.TrimSpace(formatFlag))
	}
	if rawOutput {
		p.Format = profiles.FormatNone
	}

	url := endpointFlag
	if url == "" {
		if len(args) == 0 {
			return errors.New("a service path is required (or use --endpoint)")
		}
		url = p.Endpoint(args[0])
	}

	params, err := parseParams(rawParams)
	if err != nil {
		return err
	}
	body, err := readData(dataFlag, p.Format != profiles.FormatNone)
	if err != nil {
		return err
	}

	var req *restclient.Request
	switch method {
	case http.MethodGet:
		req = restclient.NewGet(url, params)
	case http.MethodPost:
		req = restclient.NewPost(url, body, params)
	case http.MethodPut:
		req = restclient.NewPut(url, body, params)
	case http.MethodDelete:
		req = restclient.NewDelete(url, params)
	default:
		return fmt.Errorf("unsupported method %q", method)
	}

	for _, h := range headerFlags {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid header %q (want 'Name: Value')", h)
		}
		req.SetHeader(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if timeoutFlag > 0 {
		req.Options = map[string]any{restclient.OptionTimeout: timeoutFlag}
	}

	client, err := a.BuildClient(p)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data, err := client.Do(ctx, req)
	if err != nil {
		return errors.New(app.DescribeError(err))
	}

	out, err := app.RenderResult(data)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Println(out)
	}
	return nil
}

// parseParams converts -p flags into ordered request params. A key ending
// in [] declares a list; comma separated values expand and repeated flags
// append to the same list.
func parseParams(raw []string) (restclient.Params, error) {
	var params restclient.Params
	idx := make(map[string]int)
	for _, entry := range raw {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (want key=value)", entry)
		}
		if listKey, isList := strings.CutSuffix(key, "[]"); isList {
			if listKey == "" {
				return nil, fmt.Errorf("invalid parameter %q (empty list key)", entry)
			}
			values := strings.Split(value, ",")
			if at, seen := idx[key]; seen {
				params[at].List = append(params[at].List, values...)
				continue
			}
			idx[key] = len(params)
			params = append(params, restclient.Param{Key: listKey, List: values})
			continue
		}
		params = append(params, restclient.Param{Key: key, Value: value})
	}
	return params, nil
}

// readData resolves the --data flag: inline text, @file, or @- for stdin.
// When structured is set, JSON input stays structured so the client's
// format serializes it; otherwise the body passes through as text.
func readData(flag string, structured bool) (any, error) {
	if flag == "" {
		return nil, nil
	}

	text := flag
	if name, ok := strings.CutPrefix(flag, "@"); ok {
		var (
			raw []byte
			err error
		)
		if name == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		text = string(raw)
	}

	if structured {
		var v any
		if err := json.Unmarshal([]byte(text), &v); err == nil {
			return v, nil
		}
	}
	return text, nil
}
