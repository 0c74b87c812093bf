package output

import (
	"time"

	"github.com/ccollicutt/talklog/pkg/analyzer"
	"github.com/ccollicutt/talklog/pkg/news"
	"github.com/ccollicutt/talklog/pkg/parser"
	"github.com/ccollicutt/talklog/pkg/tagger"
)

func createMessageReport() *Report {
	start := time.Date(2024, 9, 3, 12, 0, 0, 0, time.UTC)
	messages := []tagger.TaggedMessage{
		{
			Record: parser.Record{Date: parser.Date{Year: 2024, Month: 9, Day: 2}, Time: parser.Clock{Hour: 16, Minute: 13}, Sender: "철수", Message: "지학사 교과서 배송, \"빨리\" 부탁"},
			Tags:   tagger.Tags{Category: "기타", Publisher: "지학사", Complaint: true},
		},
		{
			Record: parser.Record{Date: parser.Date{Year: 2024, Month: 9, Day: 3}, Time: parser.Clock{Hour: 9, Minute: 5}, Sender: "영희", Message: "후원 감사합니다"},
			Tags:   tagger.Tags{Category: "후원"},
		},
	}
	result := &analyzer.AnalysisResult{
		Messages: messages,
		Summaries: []*analyzer.Summary{
			{Name: analyzer.EngineCategories, Kind: analyzer.KindCategory, Description: "messages per category",
				Buckets: []analyzer.Bucket{{Key: "후원", Count: 1}, {Key: "정책", Count: 0}, {Key: "기타", Count: 1}}},
			{Name: analyzer.EngineComplaints, Kind: analyzer.KindComplaint, Description: "messages containing complaint keywords",
				Messages: messages[:1]},
		},
		Metadata: analyzer.AnalysisMetadata{StartTime: start, EndTime: start.Add(1500 * time.Millisecond)},
	}
	return NewMessageReport(result, parser.Stats{Lines: 5, Records: 2, Unrecognized: 2, Excluded: 1}, []string{"chat.txt"}, "")
}

func createArticleReport() *Report {
	results := []news.KeywordResult{
		{
			Keyword: "지학사",
			Articles: []news.Article{
				{Keyword: "지학사", Publisher: "지학사", Category: "협약/MOU", Date: news.NoDate, Title: "지학사 MOU", URL: "https://n.example.com/1", Summary: "요약", Press: "신문", PublisherMentioned: true, TextbookMentioned: false},
			},
		},
		{
			Keyword:  "벽호",
			Articles: []news.Article{},
			Failures: []news.PageFailure{{Page: 2, URL: "https://search.example.com/?start=11", Error: "status 500"}},
		},
	}
	return NewArticleReport(results, time.Now(), "talklog.yaml")
}
