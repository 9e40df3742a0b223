package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/codesearch/internal/apperr"
	"github.com/fyrsmithlabs/codesearch/internal/query"
	"github.com/fyrsmithlabs/codesearch/internal/searchindex"
)

var (
	flagAgents     []string
	flagWorkspaces []string
	flagRobot      bool
	flagLimit      int
	flagRecent     bool
)

func init() {
	searchCmd.Flags().StringSliceVar(&flagAgents, "agent", nil, "restrict results to one or more agent slugs (repeatable)")
	searchCmd.Flags().StringSliceVar(&flagWorkspaces, "workspace", nil, "restrict results to one or more workspace paths (repeatable)")
	searchCmd.Flags().BoolVar(&flagRobot, "robot", false, "emit machine-readable JSON instead of a formatted table")
	searchCmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum number of hits to return")
	searchCmd.Flags().BoolVar(&flagRecent, "recent", false, "favor newer hits over match quality")
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed conversation history",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

type robotHit struct {
	Agent      string  `json:"agent"`
	Title      string  `json:"title,omitempty"`
	SourcePath string  `json:"source_path"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	MatchType  string  `json:"match_type"`
	CreatedAt  *int64  `json:"created_at,omitempty"`
}

type robotResponse struct {
	Hits []robotHit `json:"hits"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	q := args[0]

	c, err := loadConfig()
	if err != nil {
		return apperr.IOFatal("load-config", flagConfig, err)
	}

	logger, err := newLogger(c.Logging)
	if err != nil {
		return apperr.IOFatal("build-logger", "", err)
	}
	defer logger.Sync()

	idx, err := searchindex.OpenOrCreate(searchindex.IndexDir(c.DataDir), logger.Underlying())
	if err != nil {
		return apperr.IndexCorrupt(searchindex.IndexDir(c.DataDir), err)
	}
	defer idx.Close()

	mode := query.RankingBalanced
	if flagRecent {
		mode = query.RankingRecentHeavy
	}

	svc := query.NewService(idx, logger.Underlying())
	hits, err := svc.Search(q, query.Filters{Agents: flagAgents, Workspaces: flagWorkspaces}, mode, flagLimit)
	if err != nil {
		return apperr.QueryParse(q, err)
	}

	if flagRobot {
		return printRobotHits(hits)
	}
	printTableHits(hits)
	return nil
}

func printRobotHits(hits []query.SearchHit) error {
	resp := robotResponse{Hits: make([]robotHit, 0, len(hits))}
	for _, h := range hits {
		resp.Hits = append(resp.Hits, robotHit{
			Agent:      h.Agent,
			Title:      h.Title,
			SourcePath: h.SourcePath,
			Content:    h.Content,
			Score:      h.Score,
			MatchType:  h.MatchType.String(),
			CreatedAt:  h.CreatedAt,
		})
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return apperr.IOFatal("marshal-robot-response", "", err)
	}
	fmt.Println(string(out))
	return nil
}

func printTableHits(hits []query.SearchHit) {
	if len(hits) == 0 {
		fmt.Println("no results")
		return
	}
	for _, h := range hits {
		fmt.Printf("[%s] %-9s %s\n    %s\n", h.Agent, h.MatchType, h.SourcePath, h.Snippet)
	}
}
