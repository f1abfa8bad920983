package deployment

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/message"
	"github.com/viant/mgmtflow/model"
	"github.com/viant/mgmtflow/tasks/topology"
)

// AlreadyExplodedCode is reported when exploding an exploded deployment.
const AlreadyExplodedCode = "WFLYDR0015"

// ErrUploadFailed is returned by Replace when the upload was rejected.
var ErrUploadFailed = errors.New("upload failed")

// Recipes run deployment chains and turn their outcome into messages.
type Recipes struct {
	env        *model.Environment
	dispatcher dispatcher.Dispatcher
	runner     flow.Runner
	messages   message.Publisher
	progress   func() flow.Progress
	logger     logrus.FieldLogger
}

// Option customises Recipes.
type Option func(r *Recipes)

// WithRunner sets the chain runner, flow.DefaultRunner by default.
func WithRunner(runner flow.Runner) Option {
	return func(r *Recipes) { r.runner = runner }
}

// WithMessages sets the message publisher.
func WithMessages(publisher message.Publisher) Option {
	return func(r *Recipes) { r.messages = publisher }
}

// WithProgress sets the progress provider called once per run.
func WithProgress(provider func() flow.Progress) Option {
	return func(r *Recipes) { r.progress = provider }
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Recipes) { r.logger = logger }
}

// NewRecipes creates deployment recipes.
func NewRecipes(env *model.Environment, d dispatcher.Dispatcher, options ...Option) *Recipes {
	ret := &Recipes{env: env, dispatcher: d, runner: flow.DefaultRunner}
	for _, option := range options {
		option(ret)
	}
	if ret.messages == nil {
		ret.messages = &message.Collector{}
	}
	if ret.progress == nil {
		ret.progress = func() flow.Progress { return flow.NoopProgress }
	}
	if ret.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		ret.logger = logger
	}
	return ret
}

func (r *Recipes) run(ctx context.Context, name string, tasks ...flow.Task) (*flow.Context, error) {
	return r.runner.Run(ctx, name, flow.NewContext(r.progress()), tasks...)
}

func (r *Recipes) publish(ctx context.Context, msg *message.Message) {
	if err := r.messages.Publish(ctx, msg); err != nil {
		r.logger.WithError(err).Warn("failed to publish message")
	}
}

// Upload uploads or replaces each attachment; new deployments are enabled.
func (r *Recipes) Upload(ctx context.Context, attachments ...*dispatcher.Attachment) (*UploadStatistics, error) {
	if len(attachments) == 0 {
		return nil, nil
	}
	var tasks []flow.Task
	for _, attachment := range attachments {
		tasks = append(tasks,
			NewCheckDeployment(r.dispatcher, attachment.Name),
			NewUploadOrReplace(r.env, r.dispatcher, attachment.Name, attachment.Name, attachment, true))
	}
	r.logger.WithField("files", len(attachments)).Debug("uploading deployments")
	return r.uploadStatistics(ctx, "deployment.upload", len(attachments), tasks)
}

// UploadAndDeploy uploads each attachment as content and deploys it to serverGroup.
func (r *Recipes) UploadAndDeploy(ctx context.Context, serverGroup string, attachments ...*dispatcher.Attachment) (*UploadStatistics, error) {
	if len(attachments) == 0 {
		return nil, nil
	}
	var tasks []flow.Task
	for _, attachment := range attachments {
		tasks = append(tasks,
			NewCheckDeployment(r.dispatcher, attachment.Name),
			NewUploadOrReplace(r.env, r.dispatcher, attachment.Name, attachment.Name, attachment, false),
			NewAddServerGroupDeployment(r.env, r.dispatcher, attachment.Name, attachment.Name, serverGroup))
	}
	r.logger.WithFields(logrus.Fields{"files": len(attachments), "serverGroup": serverGroup}).Debug("uploading and deploying")
	return r.uploadStatistics(ctx, "deployment.upload-and-deploy", len(attachments), tasks)
}

func (r *Recipes) uploadStatistics(ctx context.Context, name string, files int, tasks []flow.Task) (*UploadStatistics, error) {
	fctx, err := r.run(ctx, name, tasks...)
	if err != nil {
		r.publish(ctx, message.Error(fmt.Sprintf("deployment operation failed for %d file(s)", files), err))
		return nil, err
	}
	statistics, ok := UploadStatisticsKey.Get(fctx)
	if !ok {
		r.logger.WithField("key", string(UploadStatisticsKey)).Error("upload statistics not found in context")
		return nil, nil
	}
	r.publish(ctx, statistics.Message())
	return statistics, nil
}

// Replace replaces the content of an existing deployment keeping its enabled state.
func (r *Recipes) Replace(ctx context.Context, name, runtimeName string, attachment *dispatcher.Attachment) error {
	exists := flow.Named("assume-deployment", flow.TaskFunc(func(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
		return flow.PushStatus(fctx, flow.StatusExists), nil
	}))
	fctx, err := r.run(ctx, "deployment.replace", exists, NewUploadOrReplace(r.env, r.dispatcher, name, runtimeName, attachment, false))
	if err != nil {
		r.publish(ctx, message.Error(fmt.Sprintf("failed to replace content of %v", name), err))
		return err
	}
	if statistics, _ := UploadStatisticsKey.Get(fctx); statistics == nil || statistics.HasFailures() {
		r.publish(ctx, message.Error(fmt.Sprintf("failed to replace content of %v", name), ErrUploadFailed))
		return ErrUploadFailed
	}
	r.publish(ctx, message.Success("content of %v replaced", name))
	return nil
}

// AddUnmanaged adds an unmanaged deployment.
func (r *Recipes) AddUnmanaged(ctx context.Context, name string, payload map[string]interface{}) error {
	return r.simple(ctx, "deployment.add-unmanaged", NewAddUnmanagedDeployment(r.dispatcher, name, payload),
		fmt.Sprintf("unmanaged deployment %v added", name), fmt.Sprintf("failed to add unmanaged deployment %v", name))
}

// Enable deploys name.
func (r *Recipes) Enable(ctx context.Context, name string) error {
	return r.simple(ctx, "deployment.enable", NewEnableDeployment(r.dispatcher, name),
		fmt.Sprintf("deployment %v enabled", name), fmt.Sprintf("failed to enable deployment %v", name))
}

// Disable undeploys name.
func (r *Recipes) Disable(ctx context.Context, name string) error {
	return r.simple(ctx, "deployment.disable", NewDisableDeployment(r.dispatcher, name),
		fmt.Sprintf("deployment %v disabled", name), fmt.Sprintf("failed to disable deployment %v", name))
}

func (r *Recipes) simple(ctx context.Context, name string, task flow.Task, success, failure string) error {
	if _, err := r.run(ctx, name, task); err != nil {
		r.publish(ctx, message.Error(failure, err))
		return err
	}
	r.publish(ctx, message.Success("%s", success))
	return nil
}

// Explode explodes name. An already exploded deployment is reported as a
// warning and is not an error.
func (r *Recipes) Explode(ctx context.Context, name string) error {
	return r.explode(ctx, "deployment.explode", name, NewExplodeDeployment(r.dispatcher, name))
}

// ExplodeSubdeployments undeploys name and explodes its subdeployments. An
// already exploded subdeployment is reported as a warning and is not an error.
func (r *Recipes) ExplodeSubdeployments(ctx context.Context, name string, subdeployments ...string) error {
	return r.explode(ctx, "deployment.explode-subdeployments", name, NewExplodeSubdeployments(r.dispatcher, name, subdeployments...))
}

func (r *Recipes) explode(ctx context.Context, flowName, name string, task flow.Task) error {
	_, err := r.run(ctx, flowName, task)
	switch {
	case err == nil:
		r.publish(ctx, message.Success("deployment %v exploded", name))
		return nil
	case model.HasCode(err, AlreadyExplodedCode):
		r.publish(ctx, message.Warning(fmt.Sprintf("deployment %v is already exploded", name), err))
		return nil
	}
	r.publish(ctx, message.Error(fmt.Sprintf("failed to explode deployment %v", name), err))
	return err
}

// Contents returns the content repository with server group assignments.
func (r *Recipes) Contents(ctx context.Context, serverGroup string) ([]*Content, error) {
	fctx, err := r.run(ctx, "deployment.contents", NewLoadContent(r.dispatcher, serverGroup))
	if err != nil {
		return nil, err
	}
	value, err := fctx.Pop()
	if err != nil {
		return nil, err
	}
	contents, _ := value.([]*Content)
	return contents, nil
}

// ServerGroupDeployments returns the deployments of serverGroup linked with
// the deployments of its first running server.
func (r *Recipes) ServerGroupDeployments(ctx context.Context, serverGroup string) ([]*ServerGroupDeployment, error) {
	tasks := []flow.Task{NewReadServerGroupDeployments(r.env, r.dispatcher, serverGroup, "")}
	tasks = append(tasks, topology.Servers(r.env, r.dispatcher)...)
	tasks = append(tasks, NewLoadDeploymentsFromRunningServer(r.env, r.dispatcher))
	fctx, err := r.run(ctx, "deployment.server-group-deployments", tasks...)
	if err != nil {
		return nil, err
	}
	deployments, _ := ServerGroupDeploymentsKey.Get(fctx)
	return deployments, nil
}
