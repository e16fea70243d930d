// Command diagnose_feeds probes the wire-tier feed URLs a scrollfeed
// deployment is configured with and reports which ones still parse.
//
// Sources are read from a plain "name=url" list file (one per line, #
// comments allowed) given as the first argument, falling back to the
// single SCROLL_WIRE_FEED_URL environment variable when no file is
// given. Results go to stdout as a text table and to
// feed_diagnostic_report.json for tooling.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// probeTimeout bounds one feed fetch; slower than the engine's 5s
// adapter deadline on purpose, so this tool distinguishes "slow" from
// "dead".
const probeTimeout = 30 * time.Second

type feedProbe struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Status       string `json:"status"` // OK, EMPTY, TIMEOUT, FETCH_ERROR, PARSE_ERROR
	ItemCount    int    `json:"item_count"`
	LatestItem   string `json:"latest_item,omitempty"`
	LatestDate   string `json:"latest_date,omitempty"`
	FeedType     string `json:"feed_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

type source struct {
	name string
	url  string
}

func main() {
	sources, err := loadSources(os.Args[1:])
	if err != nil {
		log.Fatalf("diagnose_feeds: %v", err)
	}
	if len(sources) == 0 {
		log.Fatal("diagnose_feeds: no sources; pass a name=url list file or set SCROLL_WIRE_FEED_URL")
	}

	log.Printf("probing %d wire sources", len(sources))

	probes := make([]feedProbe, 0, len(sources))
	for i, s := range sources {
		log.Printf("[%d/%d] %s", i+1, len(sources), s.name)
		probes = append(probes, probe(s))
		// Stay polite to upstream servers.
		time.Sleep(500 * time.Millisecond)
	}

	printReport(probes)
	if err := writeJSON(probes, "feed_diagnostic_report.json"); err != nil {
		log.Printf("write json report: %v", err)
	}
}

func loadSources(args []string) ([]source, error) {
	if len(args) == 0 {
		if url := os.Getenv("SCROLL_WIRE_FEED_URL"); url != "" {
			return []source{{name: "wire", url: url}}, nil
		}
		return nil, nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("close %s: %v", args[0], err)
		}
	}()

	var out []source
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, url, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed line %q: want name=url", line)
		}
		out = append(out, source{name: strings.TrimSpace(name), url: strings.TrimSpace(url)})
	}
	return out, sc.Err()
}

func probe(s source) feedProbe {
	p := feedProbe{Name: s.name, URL: s.url}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.UserAgent = "ScrollfeedBot/1.0 (diagnostics)"

	start := time.Now()
	feed, err := parser.ParseURLWithContext(s.url, ctx)
	p.ResponseTime = time.Since(start).Milliseconds()

	if err != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			p.Status = "TIMEOUT"
			p.ErrorMessage = fmt.Sprintf("no response within %v", probeTimeout)
		case strings.Contains(err.Error(), "Failed to detect feed type"):
			p.Status = "PARSE_ERROR"
			p.ErrorMessage = err.Error()
		default:
			p.Status = "FETCH_ERROR"
			p.ErrorMessage = err.Error()
		}
		return p
	}

	p.FeedType = feed.FeedType
	p.ItemCount = len(feed.Items)
	if p.ItemCount == 0 {
		p.Status = "EMPTY"
		p.ErrorMessage = "feed parsed but has no items"
		return p
	}

	newest := feed.Items[0]
	for _, it := range feed.Items {
		if ts(it).After(ts(newest)) {
			newest = it
		}
	}
	p.LatestItem = newest.Title
	if t := ts(newest); !t.IsZero() {
		p.LatestDate = t.Format(time.RFC3339)
	}

	p.Status = "OK"
	return p
}

func ts(it *gofeed.Item) time.Time {
	if it.PublishedParsed != nil {
		return *it.PublishedParsed
	}
	if it.UpdatedParsed != nil {
		return *it.UpdatedParsed
	}
	return time.Time{}
}

func printReport(probes []feedProbe) {
	byStatus := make(map[string]int)
	for _, p := range probes {
		byStatus[p.Status]++
	}

	fmt.Printf("\nwire source diagnostics (%s)\n", time.Now().Format(time.RFC3339))
	fmt.Printf("%d sources, %d OK\n\n", len(probes), byStatus["OK"])

	statuses := make([]string, 0, len(byStatus))
	for s := range byStatus {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Printf("  %-12s %d\n", s, byStatus[s])
	}
	fmt.Println()

	for _, p := range probes {
		fmt.Printf("%-12s %-20s %4d items  %5dms  %s\n", p.Status, p.Name, p.ItemCount, p.ResponseTime, p.URL)
		if p.ErrorMessage != "" {
			fmt.Printf("             %s\n", p.ErrorMessage)
		}
		if p.LatestDate != "" {
			fmt.Printf("             latest %s  %q\n", p.LatestDate, p.LatestItem)
		}
	}
}

func writeJSON(probes []feedProbe, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("close %s: %v", path, err)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(probes)
}
