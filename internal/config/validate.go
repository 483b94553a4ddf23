package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything wrong or
// suspicious about it. Errors block saving; warnings don't.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Fetch.Proxies = trimList(out.Fetch.Proxies)
	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)

	// ---- validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Fetch.TimeoutSeconds < 0 {
		res.addErr("fetch.timeout_seconds must be >= 0 (0 means the default)")
	} else if out.Fetch.TimeoutSeconds > 60 {
		res.addWarn("fetch.timeout_seconds is very high (%d); extractions will feel stuck.", out.Fetch.TimeoutSeconds)
	}
	if out.Fetch.RatePerHost < 0 {
		res.addErr("fetch.rate_per_host must be >= 0 (0 means the default)")
	}
	for i, p := range out.Fetch.Proxies {
		if !strings.Contains(p, "%s") {
			res.addErr("fetch.proxies[%d] must contain a %%s placeholder for the target URL", i)
		}
	}

	if out.Search.Enabled && strings.TrimSpace(out.Search.KeyringAccount) == "" {
		res.addWarn("search.enabled is true but search.keyring_account is empty; only the env key will be tried.")
	}

	// email required fields if enabled (password lives in the keychain)
	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Mailbox) == "" {
			res.addErr("email.mailbox is required when email.enabled=true")
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; the ingester may find nothing.")
		}
		if out.Polling.EmailSeconds <= 0 {
			res.addErr("polling.email_seconds must be > 0 when email.enabled=true")
		} else if out.Polling.EmailSeconds < 10 {
			res.addWarn("polling.email_seconds is very low (%d) and may trip IMAP rate limits.", out.Polling.EmailSeconds)
		}
	}

	return out, res
}
