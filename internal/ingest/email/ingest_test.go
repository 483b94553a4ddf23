package emailingest

import (
	"context"
	"testing"

	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	res   domain.ExtractionResult
	texts []string
}

func (s *stubExtractor) ExtractFromEmail(_ context.Context, text string) domain.ExtractionResult {
	s.texts = append(s.texts, text)
	return s.res
}

func testCfg() config.Config {
	var cfg config.Config
	cfg.Email.Enabled = true
	cfg.Email.SearchSubjectAny = []string{"application", "interview"}
	return cfg
}

func rawMessage(subject, body string) []byte {
	return []byte("From: jobs@acme.example\r\nTo: me@example.com\r\nSubject: " + subject +
		"\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" + body)
}

func TestIngestMessageSavesHit(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	ext := &stubExtractor{res: domain.ExtractionResult{
		Success:    true,
		Data:       domain.ExtractedJob{Company: "Acme", Position: "Engineer"},
		Strategy:   "text",
		Confidence: 0.6,
	}}
	hub := events.NewHub()
	sub := hub.Subscribe()

	m := Message{Subject: "Your application at Acme", Raw: rawMessage("Your application at Acme", "Company: Acme\nPosition: Engineer")}
	ok := ingestMessage(context.Background(), db.Pool, testCfg(), ext, hub, m)
	require.True(t, ok)

	// subject is prepended to the body handed to the extractor
	require.Len(t, ext.texts, 1)
	assert.Contains(t, ext.texts[0], "Your application at Acme\n")

	rows, err := store.ListExtractions(context.Background(), db.Pool, store.ListExtractionsOpts{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].Data.Company)

	assert.Contains(t, <-sub, events.TypeEmailIngested)
}

func TestIngestMessageSubjectFilter(t *testing.T) {
	ext := &stubExtractor{res: domain.ExtractionResult{Success: true}}

	m := Message{Subject: "50% off shoes", Raw: rawMessage("50% off shoes", "buy now")}
	ok := ingestMessage(context.Background(), nil, testCfg(), ext, nil, m)
	assert.False(t, ok)
	assert.Empty(t, ext.texts, "filtered messages never reach the extractor")
}

func TestIngestMessageSkipsMisses(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	ext := &stubExtractor{res: domain.ExtractionResult{Success: false}}
	m := Message{Subject: "interview loop", Raw: rawMessage("interview loop", "nothing structured")}
	ok := ingestMessage(context.Background(), db.Pool, testCfg(), ext, nil, m)
	assert.False(t, ok)

	rows, err := store.ListExtractions(context.Background(), db.Pool, store.ListExtractionsOpts{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseRFC822Multipart(t *testing.T) {
	raw := []byte("Subject: hi\r\n" +
		"Content-Type: multipart/alternative; boundary=BOUND\r\n\r\n" +
		"--BOUND\r\nContent-Type: text/plain\r\n\r\nplain body here\r\n" +
		"--BOUND\r\nContent-Type: text/html\r\n\r\n<p>html <b>body</b></p>\r\n" +
		"--BOUND--\r\n")

	text, htmlBody, subj := parseRFC822(raw, "fallback")
	assert.Equal(t, "hi", subj)
	assert.Contains(t, text, "plain body here")
	assert.Contains(t, htmlBody, "<b>body</b>")
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "Senior Engineer at Acme", htmlToText("<div>Senior&nbsp;Engineer <b>at</b>\nAcme</div>"))
}

func TestContainsAnyCI(t *testing.T) {
	assert.True(t, containsAnyCI("Your INTERVIEW is booked", []string{"interview"}))
	assert.False(t, containsAnyCI("newsletter", []string{"interview", "application"}))
	assert.False(t, containsAnyCI("anything", nil))
}
