// Package smtpgateway runs the analyzer as a Postfix content filter. Each
// message received over SMTP is analyzed, stamped with verdict headers and
// optionally relayed to an upstream MTA.
package smtpgateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

const (
	verdictHeader = "X-Phishing-Verdict"
	scoreHeader   = "X-Phishing-Score"
	reasonHeader  = "X-Phishing-Reason"
	errorHeader   = "X-Phishing-Analysis-Error"
)

// Gateway is an SMTP ingress for the analysis service. It implements
// ports.Transport.
type Gateway struct {
	service        *core.AnalysisService
	logger         *zap.Logger
	listenAddr     string
	server         *smtp.Server
	blockMalicious bool
	relayAddr      string
	relayEnabled   bool
	analyzeTimeout time.Duration
}

// NewGateway creates an SMTP gateway. When relayEnabled is set, stamped
// messages are forwarded to relayAddr; otherwise they are accepted and
// dropped, which is only useful for testing.
func NewGateway(
	service *core.AnalysisService,
	logger *zap.Logger,
	listenAddr string,
	blockMalicious bool,
	relayAddr string,
	relayEnabled bool,
	analyzeTimeout time.Duration,
) *Gateway {
	return &Gateway{
		service:        service,
		logger:         logger,
		listenAddr:     listenAddr,
		blockMalicious: blockMalicious,
		relayAddr:      relayAddr,
		relayEnabled:   relayEnabled,
		analyzeTimeout: analyzeTimeout,
	}
}

// Start starts the SMTP server. It blocks until Stop is called.
func (g *Gateway) Start() error {
	g.server = smtp.NewServer(&smtpBackend{gateway: g})
	g.server.Addr = g.listenAddr
	g.server.Domain = "localhost"
	g.server.ReadTimeout = 30 * time.Second
	g.server.WriteTimeout = 30 * time.Second
	g.server.MaxMessageBytes = 30 * 1024 * 1024
	g.server.MaxRecipients = 50
	g.server.AllowInsecureAuth = true

	g.logger.Info("SMTP gateway starting", zap.String("address", g.listenAddr))
	if err := g.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
		return fmt.Errorf("SMTP server failed: %w", err)
	}
	return nil
}

// Stop stops the SMTP server.
func (g *Gateway) Stop() error {
	if g.server != nil {
		return g.server.Close()
	}
	return nil
}

// relay forwards a stamped message to the upstream MTA.
func (g *Gateway) relay(sender string, recipients []string, data []byte) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", g.relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to upstream MTA: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			g.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			accepted = true
		}
	}
	if !accepted {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	if err := c.Quit(); err != nil {
		g.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

type smtpBackend struct {
	gateway *Gateway
}

func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		gateway:    b.gateway,
		recipients: make([]string, 0),
	}, nil
}

type smtpSession struct {
	gateway    *Gateway
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

func (s *smtpSession) Logout() error {
	return nil
}

func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data analyzes the message, stamps verdict headers and relays the result.
func (s *smtpSession) Data(r io.Reader) error {
	g := s.gateway

	raw, err := io.ReadAll(r)
	if err != nil {
		g.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.analyzeTimeout)
	defer cancel()

	result, analysisErr := g.service.AnalyzeEmail(ctx, &core.AnalyzeRequest{
		Content: string(raw),
		Sender:  s.sender,
	})
	if analysisErr != nil {
		// Fail open: a broken analyzer must not stop mail flow.
		g.logger.Error("Failed to analyze message",
			zap.Error(analysisErr),
			zap.String("sender", s.sender))
		result = &core.AnalysisResult{
			Verdict:   core.VerdictSafe,
			RiskScore: 0,
			Reason:    fmt.Sprintf("Error during analysis: %v", analysisErr),
		}
	}

	if result.Verdict == core.VerdictMalicious && g.blockMalicious && analysisErr == nil {
		g.logger.Info("Rejecting malicious message",
			zap.String("sender", s.sender),
			zap.Float64("risk_score", result.RiskScore),
			zap.String("reason", result.Reason))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected: message classified as malicious (score: %.0f)", result.RiskScore),
		}
	}

	// Prepend verdict headers; the original message bytes follow untouched
	// so MIME parts and signatures survive.
	var stamped bytes.Buffer
	fmt.Fprintf(&stamped, "%s: %s\r\n", verdictHeader, result.Verdict)
	fmt.Fprintf(&stamped, "%s: %.0f\r\n", scoreHeader, result.RiskScore)
	fmt.Fprintf(&stamped, "%s: %s\r\n", reasonHeader, result.Reason)
	if analysisErr != nil {
		fmt.Fprintf(&stamped, "%s: %s\r\n", errorHeader, analysisErr.Error())
	}
	stamped.Write(raw)

	if g.relayEnabled {
		if err := g.relay(s.sender, s.recipients, stamped.Bytes()); err != nil {
			g.logger.Error("Failed to relay message",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		g.logger.Debug("Relay disabled, dropping stamped message",
			zap.String("sender", s.sender),
			zap.String("verdict", string(result.Verdict)))
	}
	return nil
}
