package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locallift/internal/kv"
	"locallift/internal/resume"
	"locallift/internal/tasks"
)

type resumeResponse struct {
	Resume resume.Document `json:"resume"`
	Saved  bool            `json:"saved"`
}

func TestResume_GetSave(t *testing.T) {
	ts := newTestServer(t)
	token := ts.clientToken()

	w := ts.do(http.MethodGet, "/v1/resume", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodGet, "/v1/resume", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got resumeResponse
	decode(t, w, &got)
	assert.False(t, got.Saved)
	assert.Len(t, got.Resume.Experience, 1)

	doc := resume.NewDocument()
	doc.PersonalInfo.FullName = "Jane O'Neil"
	doc.Experience[0].Current = true
	doc.Experience[0].EndDate = "2020-01"
	w = ts.do(http.MethodPut, "/v1/resume", token, doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(http.MethodGet, "/v1/resume", token, nil)
	decode(t, w, &got)
	assert.True(t, got.Saved)
	assert.Equal(t, "Jane O'Neil", got.Resume.PersonalInfo.FullName)
	assert.Equal(t, resume.PresentEndDate, got.Resume.Experience[0].EndDate)
}

func TestResume_CorruptedRecordReadsBlank(t *testing.T) {
	ts := newTestServer(t)
	token := ts.clientToken()
	id, _ := clientIDOf(ts, token)
	require.NoError(t, kv.ForClient(ts.kv, id).Set(context.Background(), resume.StorageKey, []byte("{broken")))

	w := ts.do(http.MethodGet, "/v1/resume", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got resumeResponse
	decode(t, w, &got)
	assert.False(t, got.Saved)
}

func TestResume_ApplyDoesNotSave(t *testing.T) {
	ts := newTestServer(t)
	token := ts.clientToken()

	body := map[string]any{
		"resume": resume.NewDocument(),
		"operations": []resume.Op{
			{Kind: resume.OpAddExperience},
			{Kind: resume.OpSetSkills, Skills: "Go, SQL, ,Go"},
			{Kind: resume.OpSetSummary, Summary: "Ops engineer"},
		},
	}
	w := ts.do(http.MethodPost, "/v1/resume/apply", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got resumeResponse
	decode(t, w, &got)
	assert.False(t, got.Saved)
	assert.Len(t, got.Resume.Experience, 2)
	assert.Equal(t, "Ops engineer", got.Resume.Summary)
	assert.Contains(t, got.Resume.Skills, "SQL")

	w = ts.do(http.MethodGet, "/v1/resume", token, nil)
	decode(t, w, &got)
	assert.False(t, got.Saved)

	w = ts.do(http.MethodPost, "/v1/resume/apply", token, map[string]any{
		"operations": []resume.Op{{Kind: "explode"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResume_Templates(t *testing.T) {
	ts := newTestServer(t)

	type listing struct {
		Templates []struct {
			ID     string `json:"id"`
			Locked bool   `json:"locked"`
		} `json:"templates"`
		IsPremium bool `json:"isPremium"`
	}
	locked := func(l listing) []string {
		var ids []string
		for _, tpl := range l.Templates {
			if tpl.Locked {
				ids = append(ids, tpl.ID)
			}
		}
		return ids
	}

	w := ts.do(http.MethodGet, "/v1/resume/templates", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var anon listing
	decode(t, w, &anon)
	assert.False(t, anon.IsPremium)
	assert.Equal(t, []string{"creative", "executive"}, locked(anon))

	w = ts.do(http.MethodGet, "/v1/resume/templates", ts.signIn(true), nil)
	var premium listing
	decode(t, w, &premium)
	assert.True(t, premium.IsPremium)
	assert.Empty(t, locked(premium))
}

func TestResume_PremiumGates(t *testing.T) {
	ts := newTestServer(t)
	free := ts.signIn(false)
	paid := ts.signIn(true)

	w := ts.do(http.MethodPost, "/v1/resume/suggestions", free, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(http.MethodPost, "/v1/resume/suggestions", paid, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "suggestion")

	w = ts.do(http.MethodGet, "/v1/resume/preview?template=creative", free, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(http.MethodGet, "/v1/resume/preview?template=creative", paid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))

	w = ts.do(http.MethodGet, "/v1/resume/preview", free, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodGet, "/v1/resume/preview?template=nope", free, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/v1/resume/download", free, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, ts.queue.tasks)
}

func TestResume_DownloadQueuesTask(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(true)
	id, _ := clientIDOf(ts, token)

	w := ts.do(http.MethodPost, "/v1/resume/download", token, downloadRequest{Template: "executive"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "task-1")

	require.Len(t, ts.queue.tasks, 1)
	task := ts.queue.tasks[0]
	assert.Equal(t, tasks.TypeResumePDF, task.Type())
	payload, err := tasks.ParseResumePDFPayload(task)
	require.NoError(t, err)
	assert.Equal(t, id, payload.ClientID)
	assert.Equal(t, "executive", payload.TemplateID)

	ts.queue.err = errors.New("redis down")
	w = ts.do(http.MethodPost, "/v1/resume/download", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestResume_DownloadLink(t *testing.T) {
	ts := newTestServer(t)
	token := ts.clientToken()
	id, _ := clientIDOf(ts, token)

	w := ts.do(http.MethodGet, "/v1/resume/download-link", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	key := "generated-resumes/" + id + "/abc.pdf"
	record := resume.PDFRecord{ObjectKey: key, TemplateID: "modern", FileName: "jane-resume.pdf"}
	require.NoError(t, kv.SetJSON(context.Background(), kv.ForClient(ts.kv, id), resume.PDFStorageKey, record))

	w = ts.do(http.MethodGet, "/v1/resume/download-link", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), key)
	assert.Contains(t, ts.storage.params["response-content-disposition"], "jane-resume.pdf")

	w = ts.do(http.MethodGet, "/v1/resume/download-link?key="+key, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/v1/resume/download-link?key=generated-resumes/someone-else/abc.pdf", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
