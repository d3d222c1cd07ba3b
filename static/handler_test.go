package static_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sjanel/aeronet-go/message"
	"github.com/sjanel/aeronet-go/static"
)

func writeFile(dir, name, content string) {
	Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)).To(Succeed())
}

func newRequest(method, path string, hdrs ...[2]string) *message.Request {
	mh := message.NewMapHeaders()
	for _, h := range hdrs {
		mh.Add(h[0], h[1])
	}
	return &message.Request{Method: method, Path: path, Headers: mh}
}

func readAll(resp *message.Response) string {
	if resp.Kind != message.BodyFile {
		return ""
	}
	buf := make([]byte, resp.File.Length)
	n, _ := resp.File.File.ReadAt(buf, resp.File.Offset)
	resp.File.File.Close()
	return string(buf[:n])
}

func header(resp *message.Response, name string) (string, bool) {
	for _, f := range resp.Headers {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

var _ = Describe("Handler", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "aeronet-static-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(dir) })
	})

	It("rejects methods other than GET/HEAD with 405 and an Allow header", func() {
		h, err := static.New(dir, static.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		resp := h.Serve(newRequest("POST", "/"))
		Expect(resp.Status).To(Equal(405))
		v, ok := header(resp, "Allow")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("GET, HEAD"))
	})

	It("404s a path escaping the root via ..", func() {
		h, err := static.New(dir, static.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		resp := h.Serve(newRequest("GET", "/../../../etc/passwd"))
		Expect(resp.Status).To(Equal(404))
	})

	It("404s a hidden file by default and serves it once enabled", func() {
		writeFile(dir, ".secret", "shh")

		h, err := static.New(dir, static.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		resp := h.Serve(newRequest("GET", "/.secret"))
		Expect(resp.Status).To(Equal(404))
	})

	It("serves a plain file with ETag and Last-Modified", func() {
		writeFile(dir, "hello.txt", "hello world")

		h, err := static.New(dir, static.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		resp := h.Serve(newRequest("GET", "/hello.txt"))
		Expect(resp.Status).To(Equal(200))
		Expect(readAll(resp)).To(Equal("hello world"))
		_, ok := header(resp, "ETag")
		Expect(ok).To(BeTrue())
		_, ok = header(resp, "Last-Modified")
		Expect(ok).To(BeTrue())
	})

	It("serves the default index for a directory request", func() {
		writeFile(dir, "index.html", "<html>home</html>")

		h, err := static.New(dir, static.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		resp := h.Serve(newRequest("GET", "/"))
		Expect(resp.Status).To(Equal(200))
		Expect(readAll(resp)).To(Equal("<html>home</html>"))
	})

	It("renders a directory listing when indexing is enabled and no index file exists", func() {
		Expect(os.Mkdir(filepath.Join(dir, "assets"), 0o755)).To(Succeed())
		writeFile(filepath.Join(dir, "assets"), "a.txt", "a")
		writeFile(filepath.Join(dir, "assets"), "b.txt", "b")

		cfg := static.DefaultConfig()
		cfg.EnableDirectoryIndex = true
		h, err := static.New(dir, cfg)
		Expect(err).NotTo(HaveOccurred())

		resp := h.Serve(newRequest("GET", "/assets/"))
		Expect(resp.Status).To(Equal(200))
		ct, _ := header(resp, "Content-Type")
		Expect(ct).To(ContainSubstring("text/html"))
		Expect(string(resp.Bytes)).To(ContainSubstring("a.txt"))
		Expect(string(resp.Bytes)).To(ContainSubstring("b.txt"))
	})

	It("redirects a bare directory request missing the trailing slash", func() {
		Expect(os.Mkdir(filepath.Join(dir, "assets"), 0o755)).To(Succeed())
		writeFile(filepath.Join(dir, "assets"), "a.txt", "a")

		cfg := static.DefaultConfig()
		cfg.EnableDirectoryIndex = true
		h, err := static.New(dir, cfg)
		Expect(err).NotTo(HaveOccurred())

		resp := h.Serve(newRequest("GET", "/assets"))
		Expect(resp.Status).To(Equal(301))
		loc, ok := header(resp, "Location")
		Expect(ok).To(BeTrue())
		Expect(loc).To(Equal("/assets/"))
	})

	It("404s a directory with no index when indexing is disabled", func() {
		Expect(os.Mkdir(filepath.Join(dir, "empty"), 0o755)).To(Succeed())

		h, err := static.New(dir, static.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		resp := h.Serve(newRequest("GET", "/empty/"))
		Expect(resp.Status).To(Equal(404))
	})

	It("returns 304 when If-None-Match matches the current ETag", func() {
		writeFile(dir, "f.txt", "content")
		h, err := static.New(dir, static.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		first := h.Serve(newRequest("GET", "/f.txt"))
		etag, _ := header(first, "ETag")
		first.File.File.Close()

		second := h.Serve(newRequest("GET", "/f.txt", [2]string{"If-None-Match", etag}))
		Expect(second.Status).To(Equal(304))
	})

	It("returns 412 when If-Match does not match", func() {
		writeFile(dir, "f.txt", "content")
		h, err := static.New(dir, static.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		resp := h.Serve(newRequest("GET", "/f.txt", [2]string{"If-Match", "\"nonmatching\""}))
		Expect(resp.Status).To(Equal(412))
	})

	It("falls back to a full response when If-Range does not match", func() {
		writeFile(dir, "f.txt", "0123456789")
		h, err := static.New(dir, static.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		resp := h.Serve(newRequest("GET", "/f.txt",
			[2]string{"Range", "bytes=0-3"},
			[2]string{"If-Range", "\"stale-etag\""}))
		Expect(resp.Status).To(Equal(200))
		Expect(readAll(resp)).To(Equal("0123456789"))
	})

	It("returns 416 for an unsatisfiable range", func() {
		writeFile(dir, "f.txt", "0123456789")
		h, err := static.New(dir, static.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		resp := h.Serve(newRequest("GET", "/f.txt", [2]string{"Range", "bytes=100-200"}))
		Expect(resp.Status).To(Equal(416))
		cr, ok := header(resp, "Content-Range")
		Expect(ok).To(BeTrue())
		Expect(cr).To(Equal("bytes */10"))
	})

	It("resolves content type from the file extension", func() {
		writeFile(dir, "style.css", "body{}")
		h, err := static.New(dir, static.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		resp := h.Serve(newRequest("GET", "/style.css"))
		ct, ok := header(resp, "Content-Type")
		Expect(ok).To(BeTrue())
		Expect(ct).To(ContainSubstring("css"))
	})

	It("rejects a non-directory root", func() {
		writeFile(dir, "notadir", "x")
		_, err := static.New(filepath.Join(dir, "notadir"), static.DefaultConfig())
		Expect(err).To(HaveOccurred())
	})
})
