package store

import (
	"errors"
	"testing"
)

func TestPipelineCRUD(t *testing.T) {
	s := New()

	p, err := s.CreatePipeline("triage", "map{element}", "filter{(1=1)}%>%map{element}")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if p.Name != "triage" {
		t.Errorf("name = %q", p.Name)
	}
	if p.RevisionID == "" {
		t.Error("revision ID should be set")
	}
	if p.CreateTime.IsZero() || p.UpdateTime.IsZero() {
		t.Error("timestamps should be set")
	}

	got, err := s.GetPipeline("triage")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Source != "map{element}" {
		t.Errorf("source = %q", got.Source)
	}

	updated, err := s.UpdatePipeline("triage", "map{(element+1)}", "filter{(1=1)}%>%map{(element+1)}")
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if updated.RevisionID == p.RevisionID {
		t.Error("update should bump the revision ID")
	}
	if updated.Source != "map{(element+1)}" {
		t.Errorf("source after update = %q", updated.Source)
	}

	if err := s.DeletePipeline("triage"); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if _, err := s.GetPipeline("triage"); err == nil {
		t.Error("get after delete should fail")
	}
}

func TestPipelineDuplicate(t *testing.T) {
	s := New()

	if _, err := s.CreatePipeline("dup", "map{element}", "c"); err != nil {
		t.Fatalf("create error: %v", err)
	}
	_, err := s.CreatePipeline("dup", "map{element}", "c")
	if err == nil {
		t.Fatal("duplicate create should fail")
	}
	if want := "pipeline 'dup' already exists"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestPipelineMissing(t *testing.T) {
	s := New()

	if _, err := s.GetPipeline("ghost"); err == nil {
		t.Error("get missing should fail")
	}
	if _, err := s.UpdatePipeline("ghost", "x", "y"); err == nil {
		t.Error("update missing should fail")
	}
	if err := s.DeletePipeline("ghost"); err == nil {
		t.Error("delete missing should fail")
	}
}

func TestListPipelinesSorted(t *testing.T) {
	s := New()

	s.CreatePipeline("zeta", "map{element}", "c")
	s.CreatePipeline("alpha", "map{element}", "c")
	s.CreatePipeline("mid", "map{element}", "c")

	list := s.ListPipelines()
	if len(list) != 3 {
		t.Fatalf("got %d pipelines", len(list))
	}
	if list[0].Name != "alpha" || list[1].Name != "mid" || list[2].Name != "zeta" {
		t.Errorf("order = %s, %s, %s", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestRecordRewrite(t *testing.T) {
	s := New()
	s.CreatePipeline("triage", "map{element}", "c")

	ok, err := s.RecordRewrite("triage", "map{element}", "filter{(1=1)}%>%map{element}", nil)
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	if ok.State != RewriteSucceeded {
		t.Errorf("state = %v", ok.State)
	}
	if ok.Result == "" || ok.Error != "" {
		t.Errorf("succeeded rewrite should carry a result only: %+v", ok)
	}

	failed, err := s.RecordRewrite("triage", "map{element", "", errors.New("syntax error: oops"))
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	if failed.State != RewriteFailed {
		t.Errorf("state = %v", failed.State)
	}
	if failed.Error != "syntax error: oops" {
		t.Errorf("error text = %q", failed.Error)
	}

	if ok.Name == failed.Name {
		t.Error("rewrite names must be unique")
	}
}

func TestListRewritesNewestFirst(t *testing.T) {
	s := New()
	s.CreatePipeline("triage", "map{element}", "c")

	first, _ := s.RecordRewrite("triage", "map{element}", "r1", nil)
	second, _ := s.RecordRewrite("triage", "map{element}", "r2", nil)

	list, err := s.ListRewrites("triage")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d rewrites", len(list))
	}
	if list[0].Name != second.Name || list[1].Name != first.Name {
		t.Errorf("order = %s, %s", list[0].Name, list[1].Name)
	}

	got, err := s.GetRewrite("triage", first.Name)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Result != "r1" {
		t.Errorf("result = %q", got.Result)
	}
}

func TestRewritesMissing(t *testing.T) {
	s := New()

	if _, err := s.RecordRewrite("ghost", "x", "y", nil); err == nil {
		t.Error("record on missing pipeline should fail")
	}
	if _, err := s.ListRewrites("ghost"); err == nil {
		t.Error("list on missing pipeline should fail")
	}

	s.CreatePipeline("real", "map{element}", "c")
	if _, err := s.GetRewrite("real", "rw-404"); err == nil {
		t.Error("get missing rewrite should fail")
	}
}

func TestDeleteDropsRewrites(t *testing.T) {
	s := New()
	s.CreatePipeline("triage", "map{element}", "c")
	s.RecordRewrite("triage", "map{element}", "r", nil)

	if err := s.DeletePipeline("triage"); err != nil {
		t.Fatalf("delete error: %v", err)
	}

	s.CreatePipeline("triage", "map{element}", "c")
	list, err := s.ListRewrites("triage")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("recreated pipeline inherited %d rewrites", len(list))
	}
}
