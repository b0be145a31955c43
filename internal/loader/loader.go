package loader

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"
	"github.com/qudus4l/portfolio-chat/pkg/models"
)

// Loader reads supplementary documents from a local data directory.
type Loader struct {
	dataDir string
}

// New creates a Loader rooted at dataDir.
func New(dataDir string) *Loader {
	return &Loader{dataDir: dataDir}
}

// LoadPDFs extracts text from every *.pdf in the data directory. A file
// that cannot be parsed is logged and skipped.
func (l *Loader) LoadPDFs() []models.Document {
	return l.loadGlob("*.pdf", loadPDF)
}

// LoadTextFiles reads every *.txt in the data directory, excluding the
// LinkedIn profile file which has its own loader.
func (l *Loader) LoadTextFiles() []models.Document {
	docs := l.loadGlob("*.txt", loadText)
	filtered := docs[:0]
	for _, d := range docs {
		if filepath.Base(d.Metadata.URL) == linkedInFile {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}

func (l *Loader) loadGlob(pattern string, load func(path string) (string, error)) []models.Document {
	matches, err := filepath.Glob(filepath.Join(l.dataDir, pattern))
	if err != nil {
		slog.Warn("bad glob pattern", "pattern", pattern, "error", err)
		return nil
	}

	var docs []models.Document
	for _, path := range matches {
		content, err := load(path)
		if err != nil {
			slog.Warn("failed to load file, skipping", "path", path, "error", err)
			continue
		}
		if content == "" {
			continue
		}
		docs = append(docs, models.Document{
			Content: content,
			Metadata: models.Metadata{
				Source: "local_file",
				URL:    path,
			},
		})
		slog.Debug("loaded local file", "path", path, "chars", len(content))
	}
	return docs
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func loadPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return buf.String(), nil
}

const linkedInFile = "linkedin_profile.txt"

// LoadLinkedIn returns the LinkedIn profile document. Scraping LinkedIn
// is deliberately unimplemented; a local profile dump is used when
// present, otherwise a fixed placeholder.
func (l *Loader) LoadLinkedIn() models.Document {
	path := filepath.Join(l.dataDir, linkedInFile)
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		slog.Debug("loaded LinkedIn profile from local file", "path", path)
		return models.Document{
			Content: string(data),
			Metadata: models.Metadata{
				Source: "linkedin_profile",
				URL:    path,
			},
		}
	}

	slog.Info("LinkedIn profile file not found, using placeholder", "path", path)
	return models.Document{
		Content: linkedInPlaceholder,
		Metadata: models.Metadata{
			Source: "linkedin_profile",
		},
	}
}

const linkedInPlaceholder = `Qudus Abolade
ML/AI Engineer

About:
Passionate ML/AI Engineer with expertise in developing production-grade language and vision systems.
Specializing in Retrieval Augmented Generation (RAG), multilingual NLP, and computer vision.
Committed to creating AI solutions that solve real-world problems.

Experience:
- AI Engineer at Curacel (2024 - Present)
  Developing intelligent systems for healthcare, customer service, and insurance automation
  - Built end-to-end RAG systems for document processing and information retrieval
  - Implemented computer vision solutions for automated claims processing
  - Developed multilingual NLP models for customer support

Education:
- Nigeria Higher Education Foundation (NHEF) Scholar, 2024
- B.Sc. Computer Science, University of Lagos

Skills:
- Machine Learning & Deep Learning
- Natural Language Processing
- Computer Vision
- Retrieval Augmented Generation (RAG)
- Python, SQL, JavaScript, R
- TensorFlow, PyTorch, Hugging Face
- LangChain, LlamaIndex
- Docker, Kubernetes
- AWS, GCP, Azure

Projects:
- Developed a multilingual RAG system for document processing in multiple languages
- Created a computer vision system for automated medical image analysis
- Built a conversational AI assistant for customer service automation
- Implemented a recommendation system for personalized content delivery`
