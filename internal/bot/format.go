package bot

import (
	"fmt"

	"cfdnsbot/internal/model"
)

const apiKeyVisibleChars = 4

// maskAPIKey shows only the first and last few characters.
func maskAPIKey(key string) string {
	if key == "" || len(key) <= apiKeyVisibleChars*2 {
		return "`not available`"
	}
	return fmt.Sprintf("`%s...%s`", key[:apiKeyVisibleChars], key[len(key)-apiKeyVisibleChars:])
}

// recordLabel is the one-line button label for a record.
func recordLabel(r model.DNSRecord) string {
	return fmt.Sprintf("%s %s → %s", r.Type, r.Name, truncate(r.Content, 24))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func recordSummary(r model.DNSRecord) string {
	proxied := "No"
	if r.Proxied {
		proxied = "Yes"
	}
	return fmt.Sprintf(
		"`Type    :` `%s`\n`Name    :` `%s`\n`Content :` `%s`\n`TTL     :` `%d`\n`Proxied :` `%s`",
		r.Type, r.Name, r.Content, r.TTL, proxied,
	)
}
