package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		title, desc string
		want        Category
	}{
		{"Lending protocol drained in flash loan exploit", "Attackers stole $40M", Security},
		{"SEC delays decision", "The regulator cited compliance concerns", Regulation},
		{"USDC supply grows", "Circle minted more stablecoins this week", Stablecoins},
		{"Uniswap v4 launches hooks", "New AMM design for DEX liquidity", DeFi},
		{"Ethereum upgrade ships", "Rollups get cheaper blobs after the mainnet fork", Infrastructure},
		{"NFT marketplace volumes rebound", "Gaming collectibles lead", NFTs},
		{"Bitcoin ETF inflows hit record", "Trading volume surged", Markets},
	}
	for _, tt := range tests {
		if got := Classify(tt.title, tt.desc); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	if cat := Classify("", ""); cat != General {
		t.Errorf("expected General for empty input, got %s", cat)
	}
}

func TestClassifyDefaultsToGeneral(t *testing.T) {
	cat := Classify("Our Year in Review", "A look back at what we accomplished")
	if cat != General {
		t.Errorf("expected General for unrelated content, got %s", cat)
	}
}

func TestClassifyNoSubstringMatches(t *testing.T) {
	// "sec" must not match inside "security" or "second".
	cat := Classify("A second look", "")
	if cat != General {
		t.Errorf("expected General, got %s", cat)
	}
}

func TestClassifyTitleWeightedHigher(t *testing.T) {
	cat := Classify("Validator exits climb", "market")
	if cat != Infrastructure {
		t.Errorf("expected Infrastructure from title keyword, got %s", cat)
	}
}

func TestResolveAlias(t *testing.T) {
	tests := []struct {
		alias    string
		expected Category
		wantErr  bool
	}{
		{"defi", DeFi, false},
		{"infra", Infrastructure, false},
		{"stables", Stablecoins, false},
		{"reg", Regulation, false},
		{"security", Security, false},
		{"nft", NFTs, false},
		{"markets", Markets, false},
		{"NFTs & Gaming", NFTs, false},
		{" Stablecoins ", Stablecoins, false},
		{"bogus", "", true},
	}

	for _, tt := range tests {
		got, err := ResolveAlias(tt.alias)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ResolveAlias(%q): expected error", tt.alias)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveAlias(%q): unexpected error: %v", tt.alias, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ResolveAlias(%q) = %q, want %q", tt.alias, got, tt.expected)
		}
	}
}

func TestAllCategories(t *testing.T) {
	if got := len(AllCategories()); got != 8 {
		t.Errorf("expected 8 categories, got %d", got)
	}
}
