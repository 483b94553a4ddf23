package emailingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"

	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/secrets"
	"jobtrack-engine/internal/store"
)

const maxEmailsPerRun = 500

// Extractor is the slice of the orchestrator the ingester needs.
type Extractor interface {
	ExtractFromEmail(ctx context.Context, text string) domain.ExtractionResult
}

// RunOnce scans unseen messages whose subject matches the configured
// needles, extracts job fields from their bodies and persists the hits.
// Every scanned message is marked \Seen afterwards, match or not.
func RunOnce(ctx context.Context, db *sql.DB, cfg config.Config, svc Extractor, hub *events.Hub) (added int, err error) {
	if !cfg.Email.Enabled {
		return 0, nil
	}
	if db == nil {
		return 0, errors.New("db is nil")
	}
	if cfg.Email.IMAPHost == "" || cfg.Email.Username == "" {
		return 0, errors.New("email enabled but missing imap_host/username")
	}

	password, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg))
	if err != nil {
		return 0, err
	}

	addr := cfg.Email.IMAPHost
	if cfg.Email.IMAPPort != 0 && !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, cfg.Email.IMAPPort)
	} else if !strings.Contains(addr, ":") {
		addr += ":993"
	}

	cctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	c, err := DialAndLogin(cctx, addr, cfg.Email.Username, password)
	if err != nil {
		return 0, err
	}
	defer LogoutAndClose(c)

	if err := SelectMailbox(c, cfg.Email.Mailbox); err != nil {
		return 0, err
	}

	msgs, err := FetchUnseen(cctx, c, maxEmailsPerRun)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	processed := make([]imap.UID, 0, len(msgs))
	for _, m := range msgs {
		if ingestMessage(cctx, db, cfg, svc, hub, m) {
			added++
		}
		processed = append(processed, m.UID)
	}

	if err := MarkSeen(c, processed); err != nil {
		return added, fmt.Errorf("mark seen: %w", err)
	}

	return added, nil
}

// ingestMessage runs the extractor over one message and persists a hit.
// Returns true only when structured fields were recovered and saved.
func ingestMessage(ctx context.Context, db *sql.DB, cfg config.Config, svc Extractor, hub *events.Hub, m Message) bool {
	bodyText, htmlBody, subj := parseRFC822(m.Raw, m.Subject)
	subj = decodeRFC2047(subj)

	if len(cfg.Email.SearchSubjectAny) > 0 && !containsAnyCI(subj, cfg.Email.SearchSubjectAny) {
		return false
	}

	text := bodyText
	if strings.TrimSpace(text) == "" {
		text = htmlToText(htmlBody)
	}
	if strings.TrimSpace(text) == "" && subj == "" {
		return false
	}

	// the subject often carries the "Role at Company" line alerts bury
	res := svc.ExtractFromEmail(ctx, subj+"\n"+text)
	if !res.Success {
		return false
	}

	id, err := store.SaveExtraction(ctx, db, store.Extraction{
		Data:       res.Data,
		Strategy:   res.Strategy,
		Confidence: res.Confidence,
	})
	if err != nil {
		log.Printf("[email] save extraction uid=%d err=%v", m.UID, err)
		return false
	}

	if hub != nil {
		hub.Publish(events.MakeEvent("", events.TypeEmailIngested, 1, map[string]any{
			"id":      id,
			"company": res.Data.Company,
			"subject": subj,
		}))
	}
	log.Printf("[email] ingested uid=%d company=%q position=%q", m.UID, res.Data.Company, res.Data.Position)
	return true
}

func containsAnyCI(s string, any []string) bool {
	ls := strings.ToLower(s)
	for _, a := range any {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if strings.Contains(ls, strings.ToLower(a)) {
			return true
		}
	}
	return false
}
