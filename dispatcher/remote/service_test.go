package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/internal/idgen"
	"github.com/viant/mgmtflow/model"
)

var _ dispatcher.Dispatcher = &Service{}

type recorded struct {
	path      string
	operation *model.Operation
	requestID string
	username  string
	file      []byte
}

func newServer(t *testing.T, reply func(operation *model.Operation) (int, string)) (*httptest.Server, *[]recorded) {
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recorded{path: r.URL.Path, requestID: r.Header.Get(requestIDHeader), operation: &model.Operation{}}
		call.username, _, _ = r.BasicAuth()
		switch r.URL.Path {
		case managementPath:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(call.operation))
		case uploadPath:
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.NoError(t, json.Unmarshal([]byte(r.FormValue("operation")), call.operation))
			if file, _, err := r.FormFile("file"); assert.NoError(t, err) {
				call.file, _ = io.ReadAll(file)
			}
		}
		calls = append(calls, call)
		status, body := reply(call.operation)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestService_Execute(t *testing.T) {
	testCases := []struct {
		description string
		status      int
		body        string
		expect      []string
		expectCode  string
	}{
		{
			description: "success",
			status:      http.StatusOK,
			body:        `{"outcome":"success","result":["a.war","b.war"]}`,
			expect:      []string{"a.war", "b.war"},
		},
		{
			description: "failure",
			status:      http.StatusInternalServerError,
			body:        `{"outcome":"failed","failure-description":"WFLYCTL0216: Management resource not found","rolled-back":true}`,
			expectCode:  "WFLYCTL0216",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			defer idgen.Sequence("req")()
			srv, calls := newServer(t, func(operation *model.Operation) (int, string) { return tc.status, tc.body })
			client := New(srv.URL, WithBasicAuth("admin", "secret"))
			operation := model.NewBuilder(model.Root(), model.OpReadChildrenNames).Param(model.AttrChildType, model.ResDeployment).Build()
			result, err := client.Execute(context.Background(), operation)
			require.Len(t, *calls, 1)
			call := (*calls)[0]
			assert.Equal(t, "admin", call.username)
			assert.Equal(t, "req-1", call.requestID)
			assert.Equal(t, model.OpReadChildrenNames, call.operation.Name)
			if tc.expectCode != "" {
				var failure *model.Failure
				require.ErrorAs(t, err, &failure)
				assert.Equal(t, tc.expectCode, failure.Code())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, result.AsStrings())
		})
	}
}

func TestService_ExecuteComposite(t *testing.T) {
	srv, calls := newServer(t, func(operation *model.Operation) (int, string) {
		return http.StatusOK, `{"outcome":"success","result":{
			"step-1":{"outcome":"success","result":["logging","undertow"]},
			"step-2":{"outcome":"success","result":{"management-major-version":22}}}}`
	})
	client := New(srv.URL)
	result, err := client.ExecuteComposite(context.Background(), model.NewComposite(
		model.NewBuilder(model.Root(), model.OpReadChildrenNames).Param(model.AttrChildType, model.ResSubsystem).Build(),
		model.NewBuilder(model.Root(), model.OpReadResource).Param(model.AttrAttributesOnly, true).Build(),
	))
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	steps, _ := (*calls)[0].operation.Params[model.AttrSteps].([]*model.Operation)
	require.Len(t, steps, 2)
	assert.Equal(t, model.OpReadChildrenNames, steps[0].Name)
	assert.Equal(t, []string{"logging", "undertow"}, result.Step(0).Result.AsStrings())
	assert.Equal(t, 22, model.ParseVersion(result.Step(1).Result).Major)
}

func TestService_Upload(t *testing.T) {
	srv, calls := newServer(t, func(operation *model.Operation) (int, string) {
		return http.StatusOK, `{"outcome":"success"}`
	})
	client := New(srv.URL)
	operation := dispatcher.InputStream(model.NewBuilder(model.NewAddress(model.ResDeployment, "a.war"), model.OpAdd).Param(model.AttrEnabled, true).Build())
	_, err := client.Upload(context.Background(), &dispatcher.Attachment{Name: "a.war", Data: []byte("PK")}, operation)
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, uploadPath, call.path)
	assert.Equal(t, []byte("PK"), call.file)
	assert.Equal(t, model.OpAdd, call.operation.Name)

	_, err = client.Upload(context.Background(), nil, operation)
	assert.ErrorIs(t, err, dispatcher.ErrNoAttachment)
}

func TestService_Unauthorized(t *testing.T) {
	srv, _ := newServer(t, func(operation *model.Operation) (int, string) { return http.StatusUnauthorized, "" })
	_, err := New(srv.URL).Execute(context.Background(), model.NewOperation(model.Root(), model.OpReadResource))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestService_CredentialsRetriedAfterFailure(t *testing.T) {
	srv, calls := newServer(t, func(operation *model.Operation) (int, string) {
		return http.StatusOK, `{"outcome":"success"}`
	})
	reveals := 0
	client := New(srv.URL, WithSecret("mem://localhost/secret.json", ""))
	client.reveal = func(ctx context.Context) (*Credentials, error) {
		reveals++
		if reveals == 1 {
			return nil, errors.New("secret store unavailable")
		}
		return &Credentials{Username: "operator", Password: "secret"}, nil
	}
	operation := model.NewOperation(model.Root(), model.OpReadResource)

	_, err := client.Execute(context.Background(), operation)
	require.Error(t, err)
	assert.Empty(t, *calls, "request is not sent without credentials")

	for i := 0; i < 2; i++ {
		_, err = client.Execute(context.Background(), operation)
		require.NoError(t, err)
	}
	require.Len(t, *calls, 2)
	assert.Equal(t, "operator", (*calls)[1].username)
	assert.Equal(t, 2, reveals, "revealed credentials are kept")
}
