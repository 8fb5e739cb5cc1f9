package statsserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeStats struct {
	values map[string]interface{}
}

func (f fakeStats) Snapshot() map[string]interface{} {
	return f.values
}

var _ = Describe("Server", func() {
	It("lists registered channels at /stats", func() {
		s := New(0)
		s.Register("chan0", fakeStats{values: map[string]interface{}{"reads": uint64(3)}})

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		s.Handler().ServeHTTP(rr, req)

		Expect(rr.Code).To(Equal(http.StatusOK))

		var names []string
		Expect(json.Unmarshal(rr.Body.Bytes(), &names)).NotTo(HaveOccurred())
		Expect(names).To(ContainElement("chan0"))
	})

	It("serves a channel's snapshot at /stats/{channel}", func() {
		s := New(0)
		s.Register("chan0", fakeStats{values: map[string]interface{}{"reads": float64(3)}})

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/stats/chan0", nil)
		s.Handler().ServeHTTP(rr, req)

		Expect(rr.Code).To(Equal(http.StatusOK))

		var body map[string]interface{}
		Expect(json.Unmarshal(rr.Body.Bytes(), &body)).NotTo(HaveOccurred())
		Expect(body["reads"]).To(Equal(float64(3)))
	})

	It("404s on an unregistered channel", func() {
		s := New(0)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/stats/missing", nil)
		s.Handler().ServeHTTP(rr, req)

		Expect(rr.Code).To(Equal(http.StatusNotFound))
	})

	It("serializes a registered root's fields at /inspect/{name}", func() {
		s := New(0)
		s.RegisterInspectable("rank", struct{ Banks int }{Banks: 16})

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/inspect/rank", nil)
		s.Handler().ServeHTTP(rr, req)

		Expect(rr.Code).To(Equal(http.StatusOK))

		var body map[string]interface{}
		Expect(json.Unmarshal(rr.Body.Bytes(), &body)).NotTo(HaveOccurred())
		Expect(body["Banks"]).To(Equal(float64(16)))
	})

	It("drills into a dotted field path at /inspect/{name}/{path}", func() {
		s := New(0)
		s.RegisterInspectable("rank", struct {
			Timing struct{ TRCD int }
		}{Timing: struct{ TRCD int }{TRCD: 12}})

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/inspect/rank/Timing", nil)
		s.Handler().ServeHTTP(rr, req)

		Expect(rr.Code).To(Equal(http.StatusOK))

		var body map[string]interface{}
		Expect(json.Unmarshal(rr.Body.Bytes(), &body)).NotTo(HaveOccurred())
		Expect(body["TRCD"]).To(Equal(float64(12)))
	})

	It("404s on an unregistered inspectable root", func() {
		s := New(0)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/inspect/missing", nil)
		s.Handler().ServeHTTP(rr, req)

		Expect(rr.Code).To(Equal(http.StatusNotFound))
	})

	It("actually binds a socket and serves over it when started", func() {
		s := New(0)
		s.Register("chan0", fakeStats{values: map[string]interface{}{"reads": float64(1)}})

		Expect(s.Start()).NotTo(HaveOccurred())
		defer s.Stop()

		resp, err := http.Get("http://" + s.Addr().String() + "/stats")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})
})
