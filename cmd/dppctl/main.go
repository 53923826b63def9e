package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/bsv-blockchain/go-dpp/pkg/client"
	"github.com/bsv-blockchain/go-dpp/pkg/defs"
	"github.com/bsv-blockchain/go-dpp/pkg/dpp"
	httptransport "github.com/bsv-blockchain/go-dpp/pkg/transport/http"
	"github.com/go-softwarelab/common/pkg/slogx"
)

const usage = `usage: dppctl [flags] <command> [arguments]

commands:
  fetch <url>            retrieve and validate payment terms
  pay <url> <tx-hex>     retrieve payment terms and pay them with the transaction

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("dppctl", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		_, _ = fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	defaults := defaultConfig()
	configPath := flags.String("config", "", "path to TOML config file")
	timeout := flags.Duration("timeout", defaults.Timeout, "timeout of a single request")
	vendorNetworks := flags.Bool("vendor-networks", false, "accept non-standard networks sent by some merchants")
	logLevel := flags.String("log-level", string(defaults.LogLevel), "log level (debug, info, warn, error)")
	memo := flags.String("memo", "", "memo sent with the payment")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg := defaults
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath, cfg)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "dppctl: %v\n", err)
			return 1
		}
	}

	var flagErr error
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.Timeout = *timeout
		case "vendor-networks":
			cfg.VendorNetworks = *vendorNetworks
		case "memo":
			cfg.Memo = *memo
		case "log-level":
			level, err := defs.ParseLogLevelStr(*logLevel)
			if err != nil {
				flagErr = fmt.Errorf("parse log-level: %w", err)
				return
			}
			cfg.LogLevel = level
		}
	})
	if flagErr != nil {
		_, _ = fmt.Fprintf(stderr, "dppctl: %v\n", flagErr)
		return 2
	}

	logger := slogx.NewLogger(
		slogx.WithWriter(stderr),
		slogx.WithLevel(cfg.LogLevel.SlogLevel()),
		slogx.WithFormat(slogx.LogFormat(cfg.LogFormat)),
	)
	dppClient := newClient(cfg, logger)

	var err error
	switch flags.Arg(0) {
	case "fetch":
		if flags.NArg() != 2 {
			flags.Usage()
			return 2
		}
		err = fetch(ctx, dppClient, flags.Arg(1), stdout)
	case "pay":
		if flags.NArg() != 3 {
			flags.Usage()
			return 2
		}
		err = pay(ctx, dppClient, flags.Arg(1), flags.Arg(2), cfg.Memo, stdout)
	default:
		flags.Usage()
		return 2
	}

	if err != nil {
		_, _ = fmt.Fprintf(stderr, "dppctl: %v\n", err)
		return 1
	}
	return 0
}

func newClient(cfg cliConfig, logger *slog.Logger) *client.Client {
	opts := []func(*client.Config){
		client.WithLogger(logger),
		client.WithTransport(httptransport.New(
			httptransport.WithTimeout(cfg.Timeout),
			httptransport.WithUserAgent(cfg.UserAgent),
			httptransport.WithLogger(logger),
		)),
	}
	if cfg.VendorNetworks {
		opts = append(opts, client.WithVendorNetworks())
	}
	return client.New(opts...)
}

func fetch(ctx context.Context, dppClient *client.Client, paymentURL string, stdout io.Writer) error {
	terms, err := dppClient.RetrieveAndValidate(ctx, paymentURL)
	if err != nil {
		return err
	}

	printTerms(stdout, dppClient, terms)
	return nil
}

func pay(ctx context.Context, dppClient *client.Client, paymentURL, transactionHex, memo string, stdout io.Writer) error {
	terms, err := dppClient.RetrieveAndValidate(ctx, paymentURL)
	if err != nil {
		return err
	}
	if dppClient.HasExpired(terms) {
		return errors.New("payment terms have expired")
	}

	outcome, err := dppClient.Submit(ctx, terms, transactionHex, memo)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "payment acknowledged (status %d)\n", outcome.StatusCode)
	if outcome.ACK != nil && outcome.ACK.RedirectURL != nil {
		_, _ = fmt.Fprintf(stdout, "redirect: %s\n", *outcome.ACK.RedirectURL)
	}
	return nil
}

func printTerms(w io.Writer, dppClient *client.Client, terms *dpp.PaymentTerms) {
	_, _ = fmt.Fprintf(w, "network:  %s\n", terms.Network)
	_, _ = fmt.Fprintf(w, "created:  %s\n", time.Unix(terms.CreationTimestamp, 0).UTC().Format(time.RFC3339))
	if expiry := terms.Expiry(); expiry != nil {
		_, _ = fmt.Fprintf(w, "expires:  %s (expired: %t)\n", time.Unix(*expiry, 0).UTC().Format(time.RFC3339), dppClient.HasExpired(terms))
	}
	if terms.Memo != nil {
		_, _ = fmt.Fprintf(w, "memo:     %s\n", *terms.Memo)
	}
	_, _ = fmt.Fprintf(w, "amount:   %d satoshis\n", terms.TotalAmount())
	for i, output := range terms.Outputs {
		_, _ = fmt.Fprintf(w, "output %d: %d satoshis to %s\n", i, output.Satoshis(), output.ScriptHex())
	}
	if paymentURL, err := terms.PaymentURI(); err == nil {
		_, _ = fmt.Fprintf(w, "pay to:   %s\n", paymentURL)
	}
}
