package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"document-chat/internal/answer"
	"document-chat/internal/config"
	"document-chat/internal/embedding"
	"document-chat/internal/extractor"
	"document-chat/internal/helper"
	"document-chat/internal/ingest"
	"document-chat/internal/rag"
	"document-chat/internal/retrieval"
	"document-chat/internal/store"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	filePath := flag.String("file", "", "Path to the document file")
	query := flag.String("query", "", "Question to ask about the document")
	summarize := flag.Bool("summarize", false, "Summarize the page range")
	themes := flag.Bool("themes", false, "Find themes in the page range")
	pageStart := flag.Int("page-start", 0, "First page of the range (0 = open)")
	pageEnd := flag.Int("page-end", 0, "Last page of the range (0 = open)")
	flag.Parse()

	if *filePath == "" {
		log.Fatal().Msg("Please provide a document file using the -file flag")
	}

	cfg := loadConfig(*configPath)
	ctx := context.Background()

	memStore := store.NewMemStore()
	index := newIndex(ctx, cfg, memStore)
	embedder := newEmbedder(cfg)

	manager := ingest.NewManager(memStore, index, embedder, cfg.RAG.MaxWordsPerChunk)
	retrievalSvc := retrieval.NewService(memStore, index, embedder)
	chat := rag.NewRAG(retrievalSvc, answer.NewLLMGenerator(cfg.InferenceLLM), memStore, cfg.RAG.TopK)

	result, err := extractor.Extract(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error extracting document")
	}

	documentID, err := manager.Ingest(ctx, result.Title, result.Text, result.PageCount)
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting document")
	}
	log.Info().Int64("document_id", documentID).Int("pages", result.PageCount).Msg("Ingesting document")

	<-manager.Done(documentID)
	if state := manager.State(documentID); state != ingest.StateReady {
		log.Fatal().Stringer("state", state).Msg("Document processing did not complete")
	}

	status, err := retrievalSvc.Status(ctx, documentID)
	if err != nil {
		log.Fatal().Err(err).Msg("Error fetching document status")
	}
	log.Info().Bool("ready", status.Ready).Int("total_pages", status.TotalPages).Msg("Document ready")

	start, end := pageBound(*pageStart), pageBound(*pageEnd)

	switch {
	case *query != "":
		message, err := chat.Ask(ctx, documentID, *query)
		if err != nil {
			log.Fatal().Err(err).Msg("Error answering question")
		}

		log.Info().Msg("Question:")
		fmt.Printf("%s\n\n", *query)
		log.Info().Msg("Sources:")
		helper.PrettyPrint(message.Context)
		log.Info().Msg("Assistant:")
		fmt.Printf("%s\n\n", message.Content)

	case *summarize:
		summary, err := chat.Summarize(ctx, documentID, start, end)
		if err != nil {
			log.Fatal().Err(err).Msg("Error summarizing")
		}
		fmt.Printf("%s\n", summary)

	case *themes:
		found, err := chat.Themes(ctx, documentID, start, end)
		if err != nil {
			log.Fatal().Err(err).Msg("Error finding themes")
		}
		fmt.Printf("%s\n", found)
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("Config file not found, using defaults")
			return config.Default()
		}
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")
	return cfg
}

func newEmbedder(cfg *config.Config) embedding.Embedder {
	switch cfg.RAG.Embedder {
	case config.ProviderOllama:
		return embedding.NewOllamaEmbedder(cfg.EmbedLLM, cfg.RAG.Dimension)
	case config.ProviderOpenAI:
		return embedding.NewOpenAIEmbedder(cfg.EmbedLLM, cfg.RAG.Dimension)
	default:
		return embedding.NewHashEmbedder()
	}
}

func newIndex(ctx context.Context, cfg *config.Config, memStore *store.MemStore) store.VectorIndex {
	switch cfg.Vector.Backend {
	case config.IndexChromem:
		if cfg.Vector.Path != "" {
			if err := helper.CreateFolder(cfg.Vector.Path); err != nil {
				log.Fatal().Err(err).Msg("Error creating vector database folder")
			}
		}
		index, err := store.NewChromemIndex(cfg.Vector.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("Error creating chromem index")
		}
		return index
	case config.IndexPostgres:
		index, err := store.NewPgIndex(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		return index
	default:
		return memStore
	}
}

func pageBound(page int) *int {
	if page <= 0 {
		return nil
	}
	return &page
}
