// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

// Command mailsend builds a mail message described in a YAML file and hands it to the
// configured transport: SMTP, the local sendmail binary, AWS SES or STDOUT.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	mail "github.com/codesaur-php/HTTP-Client"
	"github.com/codesaur-php/HTTP-Client/config"
	"github.com/codesaur-php/HTTP-Client/httpclient"
	"github.com/codesaur-php/HTTP-Client/log"
	"github.com/codesaur-php/HTTP-Client/ses"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	dryRun := flag.Bool("dry-run", false, "print the message instead of sending it")
	flag.Parse()

	if err := run(*configPath, *dryRun, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "mailsend: %s\n", err)
		os.Exit(1)
	}
}

func run(configPath string, dryRun bool, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if dryRun {
		cfg.Transport = config.TransportStdout
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg.Logging, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	msg, err := cfg.Message.Msg()
	if err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	sender, err := newSender(ctx, cfg, logger, stdout)
	if err != nil {
		return err
	}

	fetcher := httpclient.New(
		httpclient.WithTimeout(cfg.HTTP.Timeout),
		httpclient.WithUserAgent(cfg.HTTP.UserAgent),
		httpclient.WithInsecureSkipVerify(cfg.HTTP.InsecureSkipVerify),
		httpclient.WithLogger(logger),
	)
	builder := mail.NewBuilder(
		mail.WithResolver(mail.NewResolver(mail.WithFetcher(fetcher), mail.WithResolverLogger(logger))),
		mail.WithBuilderLogger(logger),
	)

	doc, err := mail.BuildAndSend(ctx, builder, sender, msg)
	if err != nil {
		return err
	}
	logger.Infof(log.Log{
		Component: log.ComponentBuilder, Format: "message %q handed to %s transport",
		Messages: []interface{}{doc.Subject, cfg.Transport},
	})
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}

func newLogger(cfg config.LoggingConfig, w io.Writer) log.Logger {
	level := log.ParseLevel(cfg.Level)
	if strings.EqualFold(cfg.Format, "json") {
		return log.NewJSON(w, level)
	}
	return log.New(w, level)
}

func newSender(ctx context.Context, cfg *config.Config, logger log.Logger, stdout io.Writer) (mail.Sender, error) {
	switch cfg.Transport {
	case config.TransportSMTP:
		authType, err := mail.ParseSMTPAuthType(cfg.SMTP.Auth)
		if err != nil {
			return nil, err
		}
		port := cfg.SMTP.Port
		if port == 0 {
			port = mail.DefaultPortTLS
			if cfg.SMTP.SSL {
				port = mail.DefaultPortSSL
			}
		}
		var opts []mail.Option
		if cfg.SMTP.SSL {
			opts = append(opts, mail.WithSSL())
		}
		opts = append(opts,
			mail.WithPort(port),
			mail.WithTimeout(cfg.SMTP.Timeout),
			mail.WithTLSPolicy(mail.ParseTLSPolicy(cfg.SMTP.TLSPolicy)),
			mail.WithSMTPAuth(authType),
			mail.WithUsername(cfg.SMTP.Username),
			mail.WithPassword(cfg.SMTP.Password),
			mail.WithLogger(logger),
		)
		if cfg.SMTP.HELO != "" {
			opts = append(opts, mail.WithHELO(cfg.SMTP.HELO))
		}
		if cfg.SMTP.InsecureSkipVerify {
			opts = append(opts, mail.WithTLSConfig(&tls.Config{
				ServerName:         cfg.SMTP.Host,
				InsecureSkipVerify: true, // #nosec G402
			}))
		}
		return mail.NewClient(cfg.SMTP.Host, opts...)
	case config.TransportSendmail:
		return mail.NewSendmail(
			mail.WithSendmailPath(cfg.Sendmail.Path),
			mail.WithSendmailArgs(cfg.Sendmail.Args...),
			mail.WithSendmailLogger(logger),
		), nil
	case config.TransportSES:
		return ses.New(ctx, ses.Config{
			Region:           cfg.SES.Region,
			AccessKeyID:      cfg.SES.AccessKeyID,
			SecretAccessKey:  cfg.SES.SecretAccessKey,
			ConfigurationSet: cfg.SES.ConfigurationSet,
		}, logger)
	default:
		return mail.NewWriterSender(stdout), nil
	}
}
