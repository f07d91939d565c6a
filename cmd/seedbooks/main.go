package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"os"

	"github.com/spf13/cobra"

	"LMS-backend/internal/library/books"
	"LMS-backend/internal/platform/db"
)

type seedBook struct {
	title  string
	author string
	desc   string
}

// サンプル蔵書（ジャンル別）
var sampleBooks = map[string][]seedBook{
	"Programming": {
		{"Python Crash Course", "Eric Matthes", "A hands-on project-based introduction"},
		{"Fluent Python", "Luciano Ramalho", "Clear concise and effective programming"},
		{"Effective Python", "Brett Slatkin", "90 specific ways to write better Python"},
		{"Learning Python", "Mark Lutz", "Powerful object-oriented programming"},
		{"Clean Code", "Robert Martin", "A handbook of agile software craftsmanship"},
		{"The Pragmatic Programmer", "David Thomas", "Your journey to mastery"},
	},
	"Web Development": {
		{"JavaScript: The Good Parts", "Douglas Crockford", "Working with the good parts"},
		{"Eloquent JavaScript", "Marijn Haverbeke", "A modern introduction to programming"},
		{"Learning React", "Alex Banks", "Modern patterns for developing React apps"},
		{"Node.js Design Patterns", "Mario Casciaro", "Design and implement production-grade"},
		{"HTML and CSS", "Jon Duckett", "Design and build websites"},
	},
	"Data Science": {
		{"Hands-On Machine Learning", "Aurelien Geron", "Scikit-Learn and TensorFlow"},
		{"Python for Data Analysis", "Wes McKinney", "Data wrangling with Pandas"},
		{"Deep Learning", "Ian Goodfellow", "Comprehensive deep learning textbook"},
		{"Data Science from Scratch", "Joel Grus", "First principles with Python"},
	},
	"Business": {
		{"Good to Great", "Jim Collins", "Why some companies make the leap"},
		{"The Lean Startup", "Eric Ries", "How today entrepreneurs use innovation"},
		{"Zero to One", "Peter Thiel", "Notes on startups"},
		{"Start with Why", "Simon Sinek", "How great leaders inspire action"},
	},
}

func main() {
	var configPath string
	var reset bool

	root := &cobra.Command{
		Use:   "seedbooks",
		Short: "Populate the library with sample books",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, reset)
		},
	}
	root.Flags().StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	root.Flags().BoolVar(&reset, "reset", false, "delete existing books before seeding (books on loan are kept)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, reset bool) error {
	cfg, err := db.LoadConfig(configPath)
	if err != nil {
		return err
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer conn.Close()

	svc := books.NewService(conn)

	if reset {
		if err := resetBooks(ctx, svc); err != nil {
			return err
		}
	}

	total, created, skipped := 0, 0, 0
	for genre, items := range sampleBooks {
		g := genre
		for _, it := range items {
			total++
			// タイトルから安定したダミーISBNを作る（再実行時に重複検出させるため）
			isbn := fmt.Sprintf("978%010d", titleHash(it.title)%10_000_000_000)
			desc := it.desc
			pages := 150 + int(titleHash(it.title)%600)

			_, err := svc.CreateBook(ctx, books.CreateBookRequest{
				Title:       it.title,
				Author:      it.author,
				ISBN:        isbn,
				Description: &desc,
				Genre:       &g,
				PageCount:   pages,
			})
			if err != nil {
				// 既に投入済みのISBNはスキップ扱い
				if api, ok := err.(*books.APIError); ok && api.Code == books.CodeConflict {
					skipped++
					continue
				}
				return fmt.Errorf("seed %q: %w", it.title, err)
			}
			created++
		}
	}

	log.Printf("[INFO] seeded books: total=%d created=%d skipped=%d", total, created, skipped)
	return nil
}

// resetBooks は既存の蔵書を全部消す。貸出中（未返却）の蔵書だけは残す
func resetBooks(ctx context.Context, svc *books.Service) error {
	removed, kept := 0, 0
	for {
		list, err := svc.ListBooks(ctx, books.BookFilter{}, books.Page{Limit: 200})
		if err != nil {
			return err
		}
		if len(list.Items) == 0 {
			break
		}

		kept = 0
		progress := false
		for _, b := range list.Items {
			if err := svc.DeleteBook(ctx, b.BookID); err != nil {
				if api, ok := err.(*books.APIError); ok && api.Code == books.CodeConflict {
					kept++
					continue
				}
				return fmt.Errorf("reset %q: %w", b.Title, err)
			}
			removed++
			progress = true
		}
		if !progress {
			break
		}
	}

	log.Printf("[INFO] reset books: removed=%d kept=%d", removed, kept)
	return nil
}

func titleHash(title string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(title))
	return h.Sum64()
}
