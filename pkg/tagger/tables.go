// Package tagger assigns category, publisher, subject and complaint tags to
// chat messages and news text using ordered keyword tables.
package tagger

// DefaultCategory is assigned when no category rule matches.
const DefaultCategory = "기타"

// DefaultPublisher is the news-side publisher when none is mentioned.
const DefaultPublisher = "기타"

// Rule maps a category name to the keywords that select it.
type Rule struct {
	Name     string   `yaml:"name" toml:"name" json:"name"`
	Keywords []string `yaml:"keywords" toml:"keywords" json:"keywords"`
}

// Tables holds the keyword tables. Order matters: the first category rule,
// publisher, or subject that matches wins.
type Tables struct {
	Categories    []Rule
	Publishers    []string
	Subjects      []string
	Complaints    []string
	TextbookTerms []string
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Categories: []Rule{
			{Name: "후원", Keywords: []string{"후원", "기탁"}},
			{Name: "기부", Keywords: []string{"기부"}},
			{Name: "협약/MOU", Keywords: []string{"협약", "mou"}},
			{Name: "에듀테크/디지털교육", Keywords: []string{"에듀테크", "디지털교육", "ai교육", "스마트교육"}},
			{Name: "정책", Keywords: []string{"정책"}},
			{Name: "출판", Keywords: []string{"출판"}},
			{Name: "인사/채용", Keywords: []string{"채용", "교사"}},
			{Name: "프린트 및 인쇄", Keywords: []string{"인쇄", "프린트"}},
			{Name: "공급", Keywords: []string{"공급"}},
			{Name: "교육", Keywords: []string{"교육"}},
			{Name: "이벤트", Keywords: []string{"이벤트", "사은품"}},
		},
		Publishers:    []string{"천재교육", "천재교과서", "지학사", "벽호", "프린피아", "미래엔", "교과서", "동아출판"},
		Subjects:      []string{"국어", "수학", "영어", "사회", "과학", "한국사", "도덕", "음악", "미술", "체육", "정보"},
		Complaints:    []string{"불만", "항의", "오류", "오타", "환불", "배송", "파손"},
		TextbookTerms: []string{"교과서", "발행사"},
	}
}

// Clone returns a deep copy of t.
func (t Tables) Clone() Tables {
	out := Tables{
		Categories:    make([]Rule, len(t.Categories)),
		Publishers:    append([]string(nil), t.Publishers...),
		Subjects:      append([]string(nil), t.Subjects...),
		Complaints:    append([]string(nil), t.Complaints...),
		TextbookTerms: append([]string(nil), t.TextbookTerms...),
	}
	for i, r := range t.Categories {
		out.Categories[i] = Rule{Name: r.Name, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// CategoryNames returns the category names in rule order followed by
// DefaultCategory.
func (t Tables) CategoryNames() []string {
	names := make([]string, 0, len(t.Categories)+1)
	seen := make(map[string]bool)
	for _, r := range t.Categories {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	if !seen[DefaultCategory] {
		names = append(names, DefaultCategory)
	}
	return names
}
