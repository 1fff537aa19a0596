package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emrgen/linkgraph"
	v1 "github.com/emrgen/linkgraph/apis/v1"
	"github.com/emrgen/linkgraph/internal/module"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serverAddr string
	userID     string
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "link commands",
}

func init() {
	linkCmd.PersistentFlags().StringVar(&serverAddr, "addr", ":4020", "address of the link service")
	linkCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user making the change")

	linkCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	linkCmd.AddCommand(insertLinkCmd())
	linkCmd.AddCommand(getLinkCmd())
	linkCmd.AddCommand(listLinksCmd())
	linkCmd.AddCommand(updateLinkCmd())
	linkCmd.AddCommand(removeLinkCmd())
	linkCmd.AddCommand(watchLinksCmd())
}

func insertLinkCmd() *cobra.Command {
	var fields []string

	var required = []string{"link"}

	command := &cobra.Command{
		Use:     "insert",
		Short:   "insert a link",
		Example: "linkgraph link insert -l source=a -l target=b -l weight=2",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, required) {
				return nil
			}

			l, err := parsePairs(fields)
			if err != nil {
				return err
			}

			return withClient(func(client linkgraph.Client) error {
				res, err := client.Insert(userContext(), &v1.InsertRequest{Link: l})
				if err != nil {
					return err
				}

				logrus.Infof("link inserted with id: %s", res.Id)
				return nil
			})
		},
	}

	command.Flags().StringArrayVarP(&fields, "link", "l", nil, "field=value of the link (required)")

	return command
}

func getLinkCmd() *cobra.Command {
	var id string

	var required = []string{"id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a link by id",
		Example: "linkgraph link get -i <link-id>",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, required) {
				return nil
			}

			return withClient(func(client linkgraph.Client) error {
				res, err := client.Fetch(userContext(), &v1.FetchRequest{Selector: &v1.Selector{Id: id}, Limit: 1})
				if err != nil {
					return err
				}
				if len(res.Links) == 0 {
					return fmt.Errorf("link %s not found", id)
				}

				return printJSON(cmd.OutOrStdout(), res.Links[0])
			})
		},
	}

	command.Flags().StringVarP(&id, "id", "i", "", "link id (required)")

	return command
}

func listLinksCmd() *cobra.Command {
	var sel selectorFlags
	var sort []string
	var skip, limit int

	command := &cobra.Command{
		Use:     "list",
		Short:   "list links",
		Example: "linkgraph link list -l source=a --sort -target --limit 10",
		RunE: func(cmd *cobra.Command, args []string) error {
			selector, err := sel.selector()
			if err != nil {
				return err
			}

			req := &v1.FetchRequest{
				Selector: selector,
				Sort:     parseSort(sort),
				Skip:     skip,
				Limit:    limit,
			}

			return withClient(func(client linkgraph.Client) error {
				res, err := client.Fetch(userContext(), req)
				if err != nil {
					return err
				}

				for _, l := range res.Links {
					if err := printJSON(cmd.OutOrStdout(), l); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	sel.register(command)
	command.Flags().StringSliceVar(&sort, "sort", nil, "fields to sort by, prefix with - for descending")
	command.Flags().IntVar(&skip, "skip", 0, "number of links to skip")
	command.Flags().IntVar(&limit, "limit", 0, "maximum number of links")

	return command
}

func updateLinkCmd() *cobra.Command {
	var sel selectorFlags
	var set []string
	var unset []string

	command := &cobra.Command{
		Use:     "update",
		Short:   "update the selected links",
		Example: "linkgraph link update -l source=a -s target=c --unset weight",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sel.missing(cmd) {
				return nil
			}

			selector, err := sel.selector()
			if err != nil {
				return err
			}

			values, err := parsePairs(set)
			if err != nil {
				return err
			}

			req := &v1.UpdateRequest{
				Selector: selector,
				Set:      values,
				Unset:    unset,
			}

			return withClient(func(client linkgraph.Client) error {
				res, err := client.Update(userContext(), req)
				if err != nil {
					return err
				}

				logrus.Infof("updated %d links", res.Count)
				return nil
			})
		},
	}

	sel.registerMutating(command)
	command.Flags().StringArrayVarP(&set, "set", "s", nil, "field=value to set")
	command.Flags().StringSliceVar(&unset, "unset", nil, "fields to remove")

	return command
}

func removeLinkCmd() *cobra.Command {
	var sel selectorFlags

	command := &cobra.Command{
		Use:     "remove",
		Short:   "remove the selected links",
		Example: "linkgraph link remove -i <link-id>",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sel.missing(cmd) {
				return nil
			}

			selector, err := sel.selector()
			if err != nil {
				return err
			}

			return withClient(func(client linkgraph.Client) error {
				res, err := client.Remove(userContext(), &v1.RemoveRequest{Selector: selector})
				if err != nil {
					return err
				}

				logrus.Infof("removed %d links", res.Count)
				return nil
			})
		},
	}

	sel.registerMutating(command)

	return command
}

func watchLinksCmd() *cobra.Command {
	var event string

	var required = []string{"event"}

	command := &cobra.Command{
		Use:     "watch",
		Short:   "print link events as they happen",
		Example: "linkgraph link watch -e link",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, required) {
				return nil
			}

			return withClient(func(client linkgraph.Client) error {
				stream, err := client.Watch(userContext(), &v1.WatchRequest{Event: event})
				if err != nil {
					return err
				}

				for {
					e, err := stream.Recv()
					if errors.Is(err, io.EOF) {
						return nil
					}
					if err != nil {
						return err
					}

					if err := printJSON(cmd.OutOrStdout(), e); err != nil {
						return err
					}
				}
			})
		},
	}

	command.Flags().StringVarP(&event, "event", "e", "", "insert, update, remove, link or unlink (required)")

	return command
}

// selectorFlags are the flags shared by the commands addressing links.
type selectorFlags struct {
	id        string
	fields    []string
	undefined []string
	all       bool
}

var selectorFlagNames = []string{"id", "link", "undefined"}

func (s *selectorFlags) register(command *cobra.Command) {
	command.Flags().StringVarP(&s.id, "id", "i", "", "link id")
	command.Flags().StringArrayVarP(&s.fields, "link", "l", nil, "field=value the links must have")
	command.Flags().StringSliceVar(&s.undefined, "undefined", nil, "fields the links must not have")
}

// registerMutating registers the selector flags plus --all, which a mutating
// command needs before it accepts an empty selector.
func (s *selectorFlags) registerMutating(command *cobra.Command) {
	s.register(command)
	command.Flags().BoolVar(&s.all, "all", false, "select every link")
}

// missing reports whether a mutating command was given no selector at all.
func (s *selectorFlags) missing(cmd *cobra.Command) bool {
	if s.all {
		return false
	}

	return checkAnyFlag(cmd, selectorFlagNames, "all")
}

func (s *selectorFlags) selector() (*v1.Selector, error) {
	fields, err := parsePairs(s.fields)
	if err != nil {
		return nil, err
	}

	return &v1.Selector{Id: s.id, Link: fields, Undefined: s.undefined}, nil
}

func withClient(f func(client linkgraph.Client) error) error {
	client, err := linkgraph.NewClient(serverAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	return f(client)
}

func userContext() context.Context {
	ctx := context.Background()
	if userID != "" {
		ctx = module.WithOutgoingUserID(ctx, userID)
	}

	return ctx
}

// parsePairs turns field=value pairs into a map. Values that parse as JSON
// keep their JSON type, anything else is a string.
func parsePairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		field, raw, ok := strings.Cut(pair, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid pair %q, expected field=value", pair)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		values[field] = value
	}

	return values, nil
}

func parseSort(fields []string) []v1.SortKey {
	keys := make([]v1.SortKey, 0, len(fields))
	for _, field := range fields {
		if name, ok := strings.CutPrefix(field, "-"); ok {
			keys = append(keys, v1.SortKey{Field: name})
			continue
		}
		keys = append(keys, v1.SortKey{Field: field, Ascending: true})
	}

	return keys
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
