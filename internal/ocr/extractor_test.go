package ocr

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/mentorlink/feedback-service/internal/models"
)

func testExtractor() *VisionExtractor {
	n := 0
	return &VisionExtractor{
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		newID: func() string {
			n++
			return fmt.Sprintf("q-%d", n)
		},
	}
}

func TestParseResponse(t *testing.T) {
	e := testExtractor()

	t.Run("plain json array", func(t *testing.T) {
		content := `[{"type":"rating","label":"How helpful was your mentor?","required":true,"minRating":1,"maxRating":5}]`
		questions, err := e.parseResponse(content)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(questions) != 1 {
			t.Fatalf("got %d questions", len(questions))
		}
		q := questions[0]
		if q.ID == "" {
			t.Error("id should be generated")
		}
		if q.Type != models.QuestionRating || !q.Required {
			t.Errorf("unexpected question %+v", q)
		}
		if q.MinRating == nil || *q.MinRating != 1 || q.MaxRating == nil || *q.MaxRating != 5 {
			t.Errorf("rating bounds not carried over: %+v", q)
		}
	})

	t.Run("code fenced json", func(t *testing.T) {
		content := "```json\n[{\"type\":\"text\",\"label\":\"Comments\"}]\n```"
		questions, err := e.parseResponse(content)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(questions) != 1 || questions[0].Type != models.QuestionText {
			t.Errorf("unexpected result %+v", questions)
		}
	})

	t.Run("empty array", func(t *testing.T) {
		questions, err := e.parseResponse("[]")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(questions) != 0 {
			t.Errorf("expected no questions, got %+v", questions)
		}
	})

	t.Run("missing label is an error", func(t *testing.T) {
		if _, err := e.parseResponse(`[{"type":"text","label":" "}]`); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("invalid type is an error", func(t *testing.T) {
		if _, err := e.parseResponse(`[{"type":"checkbox","label":"Pick"}]`); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("prose is an error", func(t *testing.T) {
		if _, err := e.parseResponse("I could not find any questions."); err == nil {
			t.Error("expected error")
		}
	})
}

func TestValidateImageData(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n0000000000")
	jpegHeader := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

	t.Run("raw png accepted", func(t *testing.T) {
		url, err := ValidateImageData(base64.StdEncoding.EncodeToString(pngHeader))
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if !strings.HasPrefix(url, "data:image/") {
			t.Errorf("expected data url, got %s", url)
		}
	})

	t.Run("raw jpeg accepted", func(t *testing.T) {
		if _, err := ValidateImageData(base64.StdEncoding.EncodeToString(jpegHeader)); err != nil {
			t.Errorf("validate: %v", err)
		}
	})

	t.Run("data url passthrough", func(t *testing.T) {
		in := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
		url, err := ValidateImageData(in)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if url != in {
			t.Errorf("data url should pass through unchanged")
		}
	})

	t.Run("invalid base64 rejected", func(t *testing.T) {
		if _, err := ValidateImageData("not&&base64!!"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unsupported format rejected", func(t *testing.T) {
		gif := base64.StdEncoding.EncodeToString([]byte("GIF89a000000"))
		if _, err := ValidateImageData(gif); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("oversize image rejected", func(t *testing.T) {
		big := make([]byte, (maxImageSizeMB+1)*1024*1024)
		copy(big, "\x89PNG\r\n\x1a\n")
		if _, err := ValidateImageData(base64.StdEncoding.EncodeToString(big)); err == nil {
			t.Error("expected error")
		}
	})
}
