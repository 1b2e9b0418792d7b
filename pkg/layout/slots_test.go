package layout

import (
	"testing"

	"github.com/intentflow/intentflow/pkg/cdg"
)

func TestCleanStatement(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whitespace run", "  预算上限:   3000元 ", "预算上限: 3000元"},
		{"task prefix", "用户任务: 计划去日本的行程", "计划去日本的行程"},
		{"supplement prefix", "用户补充：预算上限: 3000元", "预算上限: 3000元"},
		{"plain", "destination: Tokyo", "destination: Tokyo"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanStatement(tt.in); got != tt.want {
				t.Errorf("CleanStatement(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		node       cdg.Node
		wantFamily SlotFamily
		wantKey    string
		wantMatch  bool
	}{
		{
			name:       "budget cn",
			node:       cdg.Node{Type: cdg.TypeConstraint, Statement: "预算上限: 3000元"},
			wantFamily: SlotBudget, wantKey: "budget", wantMatch: true,
		},
		{
			name:       "budget en",
			node:       cdg.Node{Type: cdg.TypeConstraint, Statement: "budget cap: 1500 usd"},
			wantFamily: SlotBudget, wantKey: "budget", wantMatch: true,
		},
		{
			name:       "trip duration",
			node:       cdg.Node{Type: cdg.TypeConstraint, Statement: "行程时长: 7天"},
			wantFamily: SlotDuration, wantKey: "duration", wantMatch: true,
		},
		{
			name:       "per-city duration keeps instance",
			node:       cdg.Node{Type: cdg.TypeFact, Statement: "城市时长: 东京 3天"},
			wantFamily: SlotDuration, wantKey: "duration:东京", wantMatch: true,
		},
		{
			name:       "party size",
			node:       cdg.Node{Type: cdg.TypeFact, Statement: "同行人数: 2人"},
			wantFamily: SlotPeople, wantKey: "people", wantMatch: true,
		},
		{
			name:       "destination keeps instance",
			node:       cdg.Node{Type: cdg.TypeFact, Statement: "目的地: 大阪"},
			wantFamily: SlotDestination, wantKey: "destination:大阪", wantMatch: true,
		},
		{
			name:       "meeting critical date",
			node:       cdg.Node{Type: cdg.TypeConstraint, Statement: "会议关键日: 6月3日"},
			wantFamily: SlotMeetingCritical, wantKey: "meeting_critical", wantMatch: true,
		},
		{
			name:       "health keyword",
			node:       cdg.Node{Type: cdg.TypeConstraint, Statement: "同行老人有心脏病，不能爬山"},
			wantFamily: SlotHealth, wantKey: "health", wantMatch: true,
		},
		{
			name:       "language barrier",
			node:       cdg.Node{Type: cdg.TypeConstraint, Statement: "只会中文"},
			wantFamily: SlotLanguage, wantKey: "language", wantMatch: true,
		},
		{
			name:       "lodging free form",
			node:       cdg.Node{Type: cdg.TypePreference, Statement: "全程尽量住五星酒店"},
			wantFamily: SlotLodging, wantKey: "lodging", wantMatch: true,
		},
		{
			name:       "named constraint fallback",
			node:       cdg.Node{Type: cdg.TypeConstraint, Statement: "签证窗口: 5月前办理"},
			wantFamily: SlotNamed, wantKey: "named_constraint:签证窗口", wantMatch: true,
		},
		{
			name:       "goal is always the goal slot",
			node:       cdg.Node{Type: cdg.TypeGoal, Statement: "计划一次日本之行"},
			wantFamily: SlotGoal, wantKey: "goal", wantMatch: true,
		},
		{
			name:      "empty statement never matches",
			node:      cdg.Node{Type: cdg.TypeConstraint, Statement: "   "},
			wantMatch: false,
		},
		{
			name:      "plain fact has no slot",
			node:      cdg.Node{Type: cdg.TypeFact, Statement: "天气多变"},
			wantMatch: false,
		},
		{
			name:      "budget pattern on wrong type",
			node:      cdg.Node{Type: cdg.TypeFact, Statement: "预算上限: 3000元"},
			wantMatch: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, ok := DefaultCatalog.Classify(&tt.node)
			if ok != tt.wantMatch {
				t.Fatalf("Classify = (%+v, %v), want match=%v", slot, ok, tt.wantMatch)
			}
			if !ok {
				return
			}
			if slot.Family != tt.wantFamily {
				t.Errorf("Family = %q, want %q", slot.Family, tt.wantFamily)
			}
			if slot.Key() != tt.wantKey {
				t.Errorf("Key = %q, want %q", slot.Key(), tt.wantKey)
			}
		})
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	// A labelled budget line also matches the generic named-constraint rule;
	// catalog order must pick budget.
	n := cdg.Node{Type: cdg.TypeConstraint, Statement: "预算上限: 9000元"}
	slot, ok := DefaultCatalog.Classify(&n)
	if !ok || slot.Family != SlotBudget {
		t.Errorf("Classify = (%+v, %v)", slot, ok)
	}
}
