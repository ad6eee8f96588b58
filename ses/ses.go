// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

// Package ses implements a mail.Sender that delivers Documents through the AWS SES v2
// SendEmail API as raw MIME messages.
package ses

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	mail "github.com/codesaur-php/HTTP-Client"
	"github.com/codesaur-php/HTTP-Client/log"
)

// ErrNoRegion is returned by New when no AWS region is configured
var ErrNoRegion = errors.New("AWS region is required")

// Config holds the settings for creating a Sender. Without static credentials the default
// AWS credential chain is used.
type Config struct {
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	ConfigurationSet string
}

// SendEmailAPI is the SES v2 SendEmail operation as provided by *sesv2.Client
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Sender delivers Documents via AWS SES
type Sender struct {
	client    SendEmailAPI
	configSet string
	logger    log.Logger
}

// New loads the AWS configuration for cfg and returns a Sender
func New(ctx context.Context, cfg Config, l log.Logger) (*Sender, error) {
	if cfg.Region == "" {
		return nil, ErrNoRegion
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	s := NewWithClient(sesv2.NewFromConfig(awsCfg), l)
	s.configSet = cfg.ConfigurationSet
	return s, nil
}

// NewWithClient returns a Sender using the given SES client
func NewWithClient(client SendEmailAPI, l log.Logger) *Sender {
	return &Sender{client: client, logger: l}
}

// Send submits doc as raw message. All recipients, Bcc included, are passed as destination;
// the Bcc header itself is not part of the submitted data.
func (s *Sender) Send(ctx context.Context, doc *mail.Document) error {
	rcpts := doc.Recipients()
	buf := bytes.Buffer{}
	if _, err := doc.WriteToSkipBcc(&buf); err != nil {
		return mail.NewSendError(mail.ErrWriteContent, false, rcpts, err)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(doc.EnvelopeFrom()),
		Destination:      &types.Destination{ToAddresses: rcpts},
		Content:          &types.EmailContent{Raw: &types.RawMessage{Data: buf.Bytes()}},
	}
	if s.configSet != "" {
		input.ConfigurationSetName = aws.String(s.configSet)
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if s.logger != nil {
			s.logger.Warnf(log.Log{Component: log.ComponentSES, Format: "SES API error: %s", Messages: []interface{}{err}})
		}
		return mail.NewSendError(mail.ErrAPIRequest, isThrottled(err), rcpts, err)
	}
	if s.logger != nil {
		s.logger.Infof(log.Log{
			Component: log.ComponentSES, Format: "message accepted by SES with id %s",
			Messages: []interface{}{aws.ToString(out.MessageId)},
		})
	}
	return nil
}

// isThrottled reports whether SES rejected the request because of sending limits, which is
// worth retrying later
func isThrottled(err error) bool {
	var tooMany *types.TooManyRequestsException
	var limit *types.LimitExceededException
	return errors.As(err, &tooMany) || errors.As(err, &limit)
}
