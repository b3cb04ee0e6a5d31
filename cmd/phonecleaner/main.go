// Command phonecleaner normalizes a file of US phone numbers and can
// push the source file to a running file API instance afterwards
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	input := pflag.StringP("input", "i", "", "Path to the file with one phone number per line")
	output := pflag.StringP("output", "o", "", "Where to write the cleaned list (default: <input>.cleaned)")
	stripCountry := pflag.Bool("strip-country", true, "Drop a leading +1 / 1 country code")
	dropInvalid := pflag.Bool("drop-invalid", false, "Drop lines that aren't valid US numbers instead of passing them through")
	max := pflag.Int("max", 0, "Process at most this many numbers, 0 means all")
	upload := pflag.Bool("upload", false, "Upload the input file to the server when done")
	server := pflag.String("server", "http://localhost:5000", "Base URL of the file API")
	token := pflag.String("token", "", "Bearer token for the upload")
	pflag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "phonecleaner: --input is required")
		pflag.Usage()
		os.Exit(2)
	}

	raw, err := os.ReadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "phonecleaner: %v\n", err)
		os.Exit(1)
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	cleaned, stats := CleanLines(lines, *stripCountry, *dropInvalid, *max)

	dst := *output
	if dst == "" {
		dst = *input + ".cleaned"
	}

	err = os.WriteFile(dst, []byte(strings.Join(cleaned, "\n")+"\n"), 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "phonecleaner: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Processed %d numbers: %d valid, %d invalid, %d dropped\n",
		stats.Total, stats.Valid, stats.Invalid, stats.Dropped)
	fmt.Printf("Cleaned list written to %s\n", dst)

	if !*upload {
		return
	}

	if *token == "" {
		fmt.Fprintln(os.Stderr, "phonecleaner: --token is required for --upload")
		os.Exit(2)
	}

	if err := uploadFile(*server, *token, *input, raw); err != nil {
		fmt.Fprintf(os.Stderr, "phonecleaner: upload failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Source file uploaded")
}

// uploadFile pushes the original input file to POST /api/files/upload
func uploadFile(server, token, name string, data []byte) error {
	var body bytes.Buffer

	w := multipart.NewWriter(&body)

	// CreateFormFile would declare application/octet-stream which the
	// server's allow-list rejects, so build the part header by hand
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(name)))
	hdr.Set("Content-Type", "text/plain")

	part, err := w.CreatePart(hdr)
	if err != nil {
		return err
	}

	if _, err := part.Write(data); err != nil {
		return err
	}

	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(server, "/")+"/api/files/upload", &body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var e struct {
			Error string `json:"error"`
		}

		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}

		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return nil
}
