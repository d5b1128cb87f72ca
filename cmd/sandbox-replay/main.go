// Command sandbox-replay replays one historical transaction against
// the local archival cache and reports whether the result matches the
// chain's own recorded effects — the single-transaction counterpart to
// sandbox-batch. It uses the same thin urfave/cli shape throughout: a
// package-level flags struct bound via cli.Flag.Destination, one
// cli.Command, one Action.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/config"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/provider"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/replay"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/vmhost"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/replaytest"
)

type replayOpts struct {
	digest     string
	storeDir   string
	configPath string
	verify     bool
}

var replayFlags replayOpts

var replayCmd = &cli.Command{
	Name:        "replay",
	Usage:       "replay one historical transaction from the local archival cache",
	Description: "Fetches the transaction, its inputs, and its packages from the on-disk cache, replays it through the fake VM host, and compares the outcome to the chain's own recorded effects.",
	Action:      runReplay,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "digest",
			Usage:       "transaction digest to replay, e.g. 0xabc123",
			Destination: &replayFlags.digest,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "store-dir",
			Usage:       "root directory of the cache, object store, transaction store, and indices",
			Value:       defaultStoreDir(),
			Destination: &replayFlags.storeDir,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to a sandbox.toml config file (defaults applied when omitted)",
			Destination: &replayFlags.configPath,
		},
		&cli.BoolFlag{
			Name:        "verify",
			Usage:       "exit non-zero when the replay doesn't perfectly match on-chain effects",
			Value:       true,
			Destination: &replayFlags.verify,
		},
	},
}

func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sui-sandbox"
	}
	return home + "/.sui-sandbox"
}

func runReplay(c *cli.Context) error {
	cfg, err := loadConfig(replayFlags.configPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("sandbox-replay: load config: %v", err), 1)
	}

	digest, err := sui.ParseDigest(replayFlags.digest)
	if err != nil {
		return cli.Exit(fmt.Sprintf("sandbox-replay: parse digest: %v", err), 1)
	}

	p, err := openCacheOnlyProvider(cfg, replayFlags.storeDir)
	if err != nil {
		return cli.Exit(fmt.Sprintf("sandbox-replay: open store: %v", err), 1)
	}

	ctx := context.Background()
	newVM := func() vmhost.VM { return vmhost.NewFake() }

	if replayFlags.verify {
		out, err := replaytest.RunScenario(ctx, p, digest, newVM)
		printOutcome(c.App.Writer, digest, out)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		return nil
	}

	out, err := replaytest.RunScenarioNoVerify(ctx, p, digest, newVM)
	if err != nil {
		return cli.Exit(fmt.Sprintf("sandbox-replay: %v", err), 1)
	}
	printOutcome(c.App.Writer, digest, out)
	return nil
}

func printOutcome(w io.Writer, digest sui.Digest, out replay.Outcome) {
	fmt.Fprintf(w, "digest:          %s\n", digest)
	fmt.Fprintf(w, "local success:   %v\n", out.Effects.Success)
	fmt.Fprintf(w, "error class:     %s\n", out.ErrorClass)
	fmt.Fprintf(w, "match score:     %.2f\n", out.Report.MatchScore)
	fmt.Fprintf(w, "  status match:    %v\n", out.Report.StatusMatch)
	fmt.Fprintf(w, "  created match:   %v\n", out.Report.CreatedCountMatch)
	fmt.Fprintf(w, "  mutated match:   %v\n", out.Report.MutatedCountMatch)
	fmt.Fprintf(w, "  deleted match:   %v\n", out.Report.DeletedCountMatch)
	for _, d := range out.Diagnostics {
		fmt.Fprintf(w, "diagnostic: kind=%d: %s\n", d.Kind, d.Message)
	}
}

func main() {
	app := &cli.App{
		Name:     "sandbox-replay",
		Usage:    "replay a single Sui transaction from the local archival cache",
		Commands: []*cli.Command{replayCmd},
		Action:   replayCmd.Action,
		Flags:    replayCmd.Flags,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func openCacheOnlyProvider(cfg config.Config, storeDir string) (*provider.Provider, error) {
	mgr, err := cache.NewManager(storeDir+"/cache", false, cfg.CacheCompress)
	if err != nil {
		return nil, err
	}
	store, err := provider.NewFSObjectStore(storeDir + "/objects")
	if err != nil {
		return nil, err
	}
	idx, err := provider.OpenIndices(storeDir + "/indices")
	if err != nil {
		return nil, err
	}
	txStore, err := provider.NewFSTxStore(storeDir + "/transactions")
	if err != nil {
		return nil, err
	}
	// No live checkpoint/object/package/dynamic-field/epoch sources are
	// wired here: production RPC/GraphQL client construction is out of
	// this repo's scope (see internal/provider's GRPCConn/GraphQLClient
	// seams), so the CLI operates purely against whatever has already
	// been ingested into the local cache and transaction store.
	return provider.New(cfg, mgr, store, idx, nil, txStore, nil, nil, nil, nil), nil
}
