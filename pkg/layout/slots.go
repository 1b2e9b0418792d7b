package layout

import (
	"regexp"
	"strings"

	"github.com/intentflow/intentflow/pkg/cdg"
)

// =============================================================================
// Semantic Slots - Domain Classification
// =============================================================================

// SlotFamily identifies the semantic category a node's statement matched.
type SlotFamily string

// Slot families, in catalog priority order. The first four are the "primary"
// families pulled up to level 1 next to the root regardless of edge topology.
const (
	SlotGoal            SlotFamily = "goal"
	SlotPeople          SlotFamily = "people"
	SlotDestination     SlotFamily = "destination"
	SlotDuration        SlotFamily = "duration"
	SlotBudget          SlotFamily = "budget"
	SlotLodging         SlotFamily = "lodging"
	SlotScenic          SlotFamily = "scenic_preference"
	SlotHealth          SlotFamily = "health"
	SlotMeetingCritical SlotFamily = "meeting_critical"
	SlotLanguage        SlotFamily = "language"
	SlotNamed           SlotFamily = "named_constraint"
)

// primaryFamilies are forced to level 1 during leveling.
var primaryFamilies = map[SlotFamily]bool{
	SlotPeople:      true,
	SlotDestination: true,
	SlotDuration:    true,
	SlotBudget:      true,
}

// Slot is a node's semantic classification. Multi-instance families
// (destination, per-city duration) carry an Instance key extracted from the
// match so repeated slots of the same family stay distinct.
type Slot struct {
	Family   SlotFamily
	Instance string
}

// Key returns a stable identity for the slot, family plus instance.
func (s Slot) Key() string {
	if s.Instance == "" {
		return string(s.Family)
	}
	return string(s.Family) + ":" + s.Instance
}

// rule matches a cleaned statement against one slot family. Types restricts
// the rule to certain node types (empty means any). instanceGroup, when
// non-zero, names the capture group whose text becomes the slot instance key.
type rule struct {
	family        SlotFamily
	types         []string
	pattern       *regexp.Regexp
	instanceGroup int
}

func (r *rule) appliesTo(nodeType string) bool {
	if len(r.types) == 0 {
		return true
	}
	for _, t := range r.types {
		if t == nodeType {
			return true
		}
	}
	return false
}

// Catalog is an ordered set of slot rules. A node matches at most one rule:
// the first whose node-type filter and statement pattern both apply.
//
// The default catalog is tuned for trip-planning conversations and matches
// the statement shapes the extraction backend emits for that domain. The
// catalog is a value so the classification step can be exercised in isolation,
// but the shipped rules are intentionally fixed.
type Catalog []rule

// Classify returns the slot for a node, or ok=false when no rule matches.
// Matching runs against the cleaned statement text.
func (c Catalog) Classify(n *cdg.Node) (Slot, bool) {
	s := CleanStatement(n.Statement)
	if s == "" {
		return Slot{}, false
	}
	if n.Type == cdg.TypeGoal {
		// Goals are their own slot; the root picker handles priority.
		return Slot{Family: SlotGoal}, true
	}
	for i := range c {
		r := &c[i]
		if !r.appliesTo(n.Type) {
			continue
		}
		m := r.pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		slot := Slot{Family: r.family}
		if r.instanceGroup > 0 && r.instanceGroup < len(m) {
			slot.Instance = strings.TrimSpace(m[r.instanceGroup])
		}
		return slot, true
	}
	return Slot{}, false
}

// DefaultCatalog matches the trip-planning statement shapes observed in
// production conversations. Statements are labelled key/value lines such as
// "预算上限: 3000元" or "目的地: 东京"; the health and language rules also
// catch free-form phrasing in either language.
var DefaultCatalog = Catalog{
	{
		family:  SlotBudget,
		types:   []string{cdg.TypeConstraint},
		pattern: regexp.MustCompile(`^(?:预算(?:上限)?|budget(?: cap| limit)?)[:：]\s*[0-9]{2,}\s*(?:元|cny|rmb|usd|eur)?$`),
	},
	{
		family:  SlotDuration,
		types:   []string{cdg.TypeConstraint},
		pattern: regexp.MustCompile(`^(?:总)?(?:行程时长|trip duration)[:：]\s*[0-9]{1,3}\s*(?:天|days?)$`),
	},
	{
		family:  SlotDuration,
		types:   []string{cdg.TypeConstraint},
		pattern: regexp.MustCompile(`^(?:会议时长|meeting duration)[:：]\s*[0-9]{1,3}\s*(?:天|days?)$`),
	},
	{
		family:        SlotDuration,
		types:         []string{cdg.TypeFact, cdg.TypeConstraint},
		pattern:       regexp.MustCompile(`^(?:城市时长|停留时长|stay duration)[:：]\s*(.+?)\s+[0-9]{1,3}\s*(?:天|days?)$`),
		instanceGroup: 1,
	},
	{
		family:  SlotPeople,
		types:   []string{cdg.TypeFact},
		pattern: regexp.MustCompile(`^(?:同行人数|party size|travellers?|travelers?)[:：]\s*[0-9]{1,3}\s*(?:人)?$`),
	},
	{
		family:        SlotDestination,
		types:         []string{cdg.TypeFact},
		pattern:       regexp.MustCompile(`^(?:目的地|destination)[:：]\s*(.+)$`),
		instanceGroup: 1,
	},
	{
		family:  SlotMeetingCritical,
		types:   []string{cdg.TypeConstraint},
		pattern: regexp.MustCompile(`^(?:会议关键日|关键会议日|论文汇报日|critical meeting date|presentation date)[:：]\s*.+$`),
	},
	{
		family:  SlotScenic,
		types:   []string{cdg.TypePreference, cdg.TypeConstraint},
		pattern: regexp.MustCompile(`^(?:景点偏好|scenic preference|activity preference)[:：]\s*.+$`),
	},
	{
		family: SlotLodging,
		types:  []string{cdg.TypePreference, cdg.TypeConstraint},
		pattern: regexp.MustCompile(`^(?:住宿偏好|酒店偏好|住宿标准|酒店标准|lodging preference|hotel standard)[:：]` +
			`|(?:全程|尽量|优先).{0,8}(?:住|入住).{0,8}(?:酒店|民宿|星级)` +
			`|(?:五星|四星|三星).{0,6}酒店`),
	},
	{
		family: SlotHealth,
		types:  []string{cdg.TypeConstraint},
		pattern: regexp.MustCompile(`(?i)心脏|心肺|冠心|心血管|高血压|糖尿病|哮喘|慢性病|老人|不能爬山|不能久走|急救` +
			`|cardiac|heart|health|asthma|diabet|hypertension|mobility`),
	},
	{
		family:  SlotLanguage,
		types:   []string{cdg.TypeConstraint},
		pattern: regexp.MustCompile(`(?i)^(?:语言|language)[:：]\s*.+$|只会中文|不会(?:说)?(?:英语|日语|外语)|no (?:english|japanese)|language barrier`),
	},
	{
		family:        SlotNamed,
		types:         []string{cdg.TypeConstraint},
		pattern:       regexp.MustCompile(`^([^:：]{1,24})[:：]\s*.+$`),
		instanceGroup: 1,
	},
}

var (
	spaceRun        = regexp.MustCompile(`\s+`)
	statementPrefix = regexp.MustCompile(`^(?i)(?:用户任务|任务|用户补充)[:：]\s*`)
)

// CleanStatement collapses whitespace and strips the transcript prefixes the
// extraction backend occasionally leaves on a statement.
func CleanStatement(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	s = statementPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
