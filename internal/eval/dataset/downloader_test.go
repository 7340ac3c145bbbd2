package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestDownloadCachesFile(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("Expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte("{\"text\":\"1200\",\"price\":1200}\n"))
	}))
	defer server.Close()

	d := NewDownloader(DownloadConfig{CacheDir: t.TempDir(), Token: "secret"})
	url := server.URL + "/sets/tags.jsonl"

	first, err := d.Download(context.Background(), url)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	second, err := d.Download(context.Background(), url)
	if err != nil {
		t.Fatalf("Second download failed: %v", err)
	}
	if first != second {
		t.Errorf("Expected same cache path, got %s and %s", first, second)
	}
	if hits != 1 {
		t.Errorf("Expected 1 request, got %d", hits)
	}

	records, err := NewLoader(first).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 1 || records[0].Price != 1200 {
		t.Errorf("Expected one record priced 1200, got %+v", records)
	}
}

func TestDownloadErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	d := NewDownloader(DownloadConfig{CacheDir: t.TempDir()})
	if _, err := d.Download(context.Background(), server.URL+"/missing.jsonl"); err == nil {
		t.Fatal("Expected error for 404")
	}

	path, _ := d.CachePath(server.URL + "/missing.jsonl")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no cached file, stat err = %v", err)
	}
}

func TestLoadOrDownloadLocalPath(t *testing.T) {
	loader, err := LoadOrDownload(context.Background(), "local/tags.parquet", DownloadConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if loader.Path() != "local/tags.parquet" {
		t.Errorf("Expected local path untouched, got %s", loader.Path())
	}
}
