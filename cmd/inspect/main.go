package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/delaneyj/statetree/persist"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	dirKey     = "dir"
	verboseKey = "verbose"
)

func main() {
	cmd := &cli.Command{
		Name:  "inspect",
		Usage: "Look into a badger directory written by persist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     dirKey,
				Usage:    "Badger directory",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  verboseKey,
				Usage: "Show badger's own logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "keys",
				Usage:  "List stored keys and their sizes",
				Action: listKeys,
			},
			{
				Name:      "dump",
				Usage:     "Print the document stored under a key",
				ArgsUsage: "<key>",
				Action:    dump,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func open(cmd *cli.Command) (*persist.BadgerStorage, error) {
	cfg := persist.BadgerConfig{Path: cmd.String(dirKey)}
	if cmd.Bool(verboseKey) {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		cfg.Logger = log
	}
	return persist.OpenBadger(cfg)
}

func listKeys(ctx context.Context, cmd *cli.Command) error {
	st, err := open(cmd)
	if err != nil {
		return err
	}
	defer st.Close()
	return writeKeys(os.Stdout, st)
}

func writeKeys(w io.Writer, st *persist.BadgerStorage) error {
	keys, err := st.Keys()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"key", "size"})
	var total uint64
	for _, k := range keys {
		size, err := st.Size(k)
		if err != nil {
			return err
		}
		total += uint64(size)
		table.Append([]string{k, humanize.Bytes(uint64(size))})
	}
	table.SetFooter([]string{fmt.Sprintf("%d keys", len(keys)), humanize.Bytes(total)})
	table.Render()
	return nil
}

func dump(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("dump takes exactly one key")
	}
	st, err := open(cmd)
	if err != nil {
		return err
	}
	defer st.Close()
	return writeDocument(os.Stdout, st, cmd.Args().First())
}

// writeDocument decodes the stored value before printing it, so a
// corrupt document fails loudly instead of printing garbage.
func writeDocument(w io.Writer, st persist.Storage, key string) error {
	data, ok, err := st.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("key %q not found", key)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}
