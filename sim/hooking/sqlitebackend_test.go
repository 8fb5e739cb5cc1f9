package hooking

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SQLiteBackend", func() {
	var (
		dir  string
		path string
		b    *SQLiteBackend
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "sqlitebackend")
		Expect(err).NotTo(HaveOccurred())

		path = filepath.Join(dir, "trace.db")
		b = NewSQLiteBackend(path)
		b.Init()
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("should persist a flushed task and be queryable by id", func() {
		b.Write(task{
			ID:        "t1",
			Kind:      "request",
			What:      "read",
			Where:     "controller",
			StartTime: 1.0,
			EndTime:   2.0,
			Steps:     []step{{ID: "s1", Time: 1.5, Kind: "issue", What: "RD"}},
		})
		b.Flush()

		row := b.db.QueryRow(`SELECT kind, what, start_time, end_time FROM tasks WHERE id = ?`, "t1")

		var kind, what string
		var start, end float64
		Expect(row.Scan(&kind, &what, &start, &end)).NotTo(HaveOccurred())
		Expect(kind).To(Equal("request"))
		Expect(what).To(Equal("read"))
		Expect(start).To(Equal(1.0))
		Expect(end).To(Equal(2.0))
	})

	It("should buffer writes below the flush threshold", func() {
		b.Write(task{ID: "t2", Kind: "request", What: "write", Where: "controller"})

		row := b.db.QueryRow(`SELECT count(*) FROM tasks WHERE id = ?`, "t2")
		var count int
		Expect(row.Scan(&count)).NotTo(HaveOccurred())
		Expect(count).To(Equal(0))

		b.Flush()

		row = b.db.QueryRow(`SELECT count(*) FROM tasks WHERE id = ?`, "t2")
		Expect(row.Scan(&count)).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))
	})
})
