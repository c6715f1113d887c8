// Package xnat implements the remote scan source backed by an XNAT imaging
// archive: catalog search, DICOM bulk download, and annotation resource
// upload over the archive's REST interface.
package xnat

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bgentry/go-netrc/netrc"

	"github.com/msk-imaging/spinemark/internal/catalog"
	"github.com/msk-imaging/spinemark/internal/source"
)

// Client is an authenticated session against one XNAT server. It owns the
// HTTP session (and the server-side JSESSION token) for its entire
// lifetime; CloseSession releases both.
type Client struct {
	server     string
	user       string
	password   string
	httpClient *http.Client
}

// NewClient creates an authenticated client for the given server. When
// user or password is empty, credentials are resolved from the machine
// entry for the server's host in ~/.netrc; if that fails too, construction
// fails with source.ErrAuthentication.
func NewClient(server, user, password string) (*Client, error) {
	server = strings.TrimRight(server, "/")

	if user == "" || password == "" {
		var err error
		user, password, err = netrcCredentials(server)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", source.ErrAuthentication, err)
		}
	}

	// The JSESSION cookie set on the first authenticated request keeps
	// the server from creating a fresh session per call.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		server:   server,
		user:     user,
		password: password,
		httpClient: &http.Client{
			Jar: jar,
			// Bulk DICOM downloads on slow archives can take minutes.
			Timeout: 5 * time.Minute,
		},
	}, nil
}

// netrcCredentials looks up login and password for the server's host in
// the user's netrc file.
func netrcCredentials(server string) (string, string, error) {
	host := server
	if u, err := url.Parse(server); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("cannot locate home directory: %v", err)
	}

	rc, err := netrc.ParseFile(filepath.Join(home, ".netrc"))
	if err != nil {
		return "", "", fmt.Errorf("cannot read netrc: %v", err)
	}

	machine := rc.FindMachine(host)
	if machine == nil || machine.Login == "" {
		return "", "", fmt.Errorf("no netrc entry for host %s", host)
	}
	return machine.Login, machine.Password, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(c.user, c.password)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	return resp, nil
}

// scanURL builds the REST path identifying one scan.
func (c *Client) scanURL(rec catalog.Record) string {
	return fmt.Sprintf("%s/data/projects/%s/subjects/%s/experiments/%s/scans/%s",
		c.server, rec.Project, rec.SubjectID, rec.SessionID, rec.ScanID)
}

// AnnotationFilename derives the artifact name stored for a scan.
func AnnotationFilename(rec catalog.Record) string {
	return fmt.Sprintf("%s-%s.json", rec.SessionLabel, rec.ScanID)
}

func (c *Client) annotationFileURL(rec catalog.Record) string {
	return c.scanURL(rec) + "/resources/ANNOTATIONS/files/" + AnnotationFilename(rec)
}

// SearchScans posts the XML search document at queryPath to the archive's
// search endpoint and parses the CSV response into a catalog.
func (c *Client) SearchScans(queryPath string) (*catalog.Catalog, error) {
	query, err := os.Open(queryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan query %s: %w", queryPath, err)
	}
	defer query.Close()

	req, err := http.NewRequest(http.MethodPost, c.server+"/data/search?format=csv", query)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("scan search returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	cat, err := catalog.ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scan search response: %w", err)
	}
	return cat, nil
}

// DownloadScanZip fetches the scan's DICOM payload as a zip archive and
// writes it to destPath. The partial file is removed on failure.
func (c *Client) DownloadScanZip(rec catalog.Record, destPath string) error {
	req, err := http.NewRequest(http.MethodGet, c.scanURL(rec)+"/resources/DICOM/files?format=zip", nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("DICOM download for scan %s returned status %d", rec.ScanID, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return fmt.Errorf("failed to save DICOM archive: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to save DICOM archive: %w", err)
	}

	return nil
}

// HasAnnotation probes the archive for a previously stored annotation
// artifact for the scan.
func (c *Client) HasAnnotation(rec catalog.Record) (bool, error) {
	req, err := http.NewRequest(http.MethodHead, c.annotationFileURL(rec), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create annotation probe: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("annotation probe for scan %s returned status %d", rec.ScanID, resp.StatusCode)
	}
}

// DownloadAnnotation fetches the stored annotation artifact to destPath.
func (c *Client) DownloadAnnotation(rec catalog.Record, destPath string) error {
	req, err := http.NewRequest(http.MethodGet, c.annotationFileURL(rec), nil)
	if err != nil {
		return fmt.Errorf("failed to create annotation request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("annotation download for scan %s returned status %d", rec.ScanID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read annotation: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write annotation file: %w", err)
	}
	return nil
}

// UploadAnnotation creates the ANNOTATIONS resource container for the scan
// (idempotent PUT) and uploads the artifact into it under the derived
// filename.
func (c *Client) UploadAnnotation(rec catalog.Record, artifactPath string) error {
	containerURL := c.scanURL(rec) + "/resources/ANNOTATIONS"

	req, err := http.NewRequest(http.MethodPut, containerURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create resource request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// 409 means the container already exists, which is fine.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("resource creation for scan %s returned status %d", rec.ScanID, resp.StatusCode)
	}

	artifact, err := os.ReadFile(artifactPath)
	if err != nil {
		return fmt.Errorf("failed to read annotation artifact: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", AnnotationFilename(rec))
	if err != nil {
		return fmt.Errorf("failed to build upload body: %w", err)
	}
	if _, err := part.Write(artifact); err != nil {
		return fmt.Errorf("failed to build upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build upload body: %w", err)
	}

	req, err = http.NewRequest(http.MethodPut, containerURL+"/files/"+AnnotationFilename(rec), &body)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err = c.do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("annotation upload for scan %s returned status %d", rec.ScanID, resp.StatusCode)
	}

	return nil
}

// CloseSession invalidates the server-side session token and drops idle
// connections. Safe to call more than once; later calls are best-effort.
func (c *Client) CloseSession() error {
	req, err := http.NewRequest(http.MethodDelete, c.server+"/data/JSESSION", nil)
	if err != nil {
		return fmt.Errorf("failed to create session close request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	c.httpClient.CloseIdleConnections()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("session close returned status %d", resp.StatusCode)
	}
	return nil
}
