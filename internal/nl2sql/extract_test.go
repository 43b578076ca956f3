package nl2sql

import "testing"

func TestHeuristicExtractor(t *testing.T) {
	cases := []struct {
		name     string
		reply    string
		want     string
		strategy Strategy
	}{
		{name: "fenced", reply: "```sql\nSELECT 1;\n```", want: "SELECT 1;", strategy: StrategyFenced},
		{name: "fenced with prose", reply: "Sure! Here you go:\n```sql\nSELECT name\nFROM users;\n```\nLet me know.", want: "SELECT name\nFROM users;", strategy: StrategyFenced},
		{name: "first fence wins", reply: "```sql SELECT 1 ``` and ```sql SELECT 2 ```", want: "SELECT 1", strategy: StrategyFenced},
		{name: "prose then select", reply: "The query is: select * from users;", want: "select * from users;", strategy: StrategySelect},
		{name: "select with trailing whitespace", reply: "SELECT COUNT(*) FROM orders;  \n\n", want: "SELECT COUNT(*) FROM orders;", strategy: StrategySelect},
		{name: "multiline select", reply: "Answer:\nSELECT id,\n  name\nFROM users", want: "SELECT id,\n  name\nFROM users", strategy: StrategySelect},
		{name: "untagged fence falls through", reply: "```\nSELECT 1\n```", want: "SELECT 1\n```", strategy: StrategySelect},
		{name: "raw", reply: "  UPDATE users SET name = 'x'  ", want: "UPDATE users SET name = 'x'", strategy: StrategyRaw},
		{name: "selected is not select", reply: "I selected nothing", want: "I selected nothing", strategy: StrategyRaw},
		{name: "empty", reply: "   ", want: "", strategy: StrategyRaw},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, strategy := HeuristicExtractor{}.ExtractWithStrategy(tc.reply)
			if got != tc.want {
				t.Fatalf("ExtractWithStrategy(%q) = %q, want %q", tc.reply, got, tc.want)
			}
			if strategy != tc.strategy {
				t.Fatalf("strategy = %q, want %q", strategy, tc.strategy)
			}
			if plain := (HeuristicExtractor{}).Extract(tc.reply); plain != tc.want {
				t.Fatalf("Extract(%q) = %q, want %q", tc.reply, plain, tc.want)
			}
		})
	}
}

type upperExtractor struct{}

func (upperExtractor) Extract(reply string) string { return "SELECT 42" }

func TestExtractFallsBackToCustomStrategy(t *testing.T) {
	sql, strategy := extract(upperExtractor{}, "anything")
	if sql != "SELECT 42" || strategy != StrategyCustom {
		t.Fatalf("extract() = %q, %q", sql, strategy)
	}
}
