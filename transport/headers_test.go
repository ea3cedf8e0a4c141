package transport

import "testing"

func TestNextUserAgentRotation(t *testing.T) {
	seen := make(map[string]int)
	for i := 0; i < 2*len(userAgents); i++ {
		ua := nextUserAgent()
		seen[ua]++
	}
	if len(seen) != len(userAgents) {
		t.Errorf("rotation visited %d distinct agents, want %d", len(seen), len(userAgents))
	}
	for ua, n := range seen {
		if n != 2 {
			t.Errorf("agent %q served %d times, want 2", ua, n)
		}
	}
}

func TestHeaderTiers(t *testing.T) {
	tiers := headerTiers()
	if len(tiers) != 3 {
		t.Fatalf("got %d tiers, want 3", len(tiers))
	}

	ua := tiers[0]["User-Agent"]
	if ua == "" {
		t.Fatal("tier 0 has no User-Agent")
	}
	for i, tier := range tiers {
		if tier["User-Agent"] != ua {
			t.Errorf("tier %d user agent differs from tier 0", i)
		}
	}

	if tiers[0]["Accept-Language"] != acceptLanguage {
		t.Errorf("tier 0 Accept-Language = %q, want %q", tiers[0]["Accept-Language"], acceptLanguage)
	}
	if tiers[0]["Sec-Fetch-Mode"] != "navigate" {
		t.Errorf("tier 0 missing fetch metadata headers")
	}
	if _, ok := tiers[1]["Sec-Fetch-Mode"]; ok {
		t.Error("tier 1 still carries fetch metadata headers")
	}
	if _, ok := tiers[2]["Accept-Language"]; ok {
		t.Error("tier 2 should be minimal")
	}

	if len(tiers[0]) <= len(tiers[1]) || len(tiers[1]) <= len(tiers[2]) {
		t.Error("tiers are not strictly decreasing in size")
	}
}
