package connection

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aryankumar/dockyard/internal/util"
)

// fakeRepo is an in-memory repository for manager tests.
type fakeRepo struct {
	conns   map[string]Connection
	creates int
	updates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{conns: make(map[string]Connection)}
}

func (r *fakeRepo) Create(ctx context.Context, conn Connection) error {
	r.creates++
	meta := conn.Meta()
	for _, existing := range r.conns {
		if existing.Meta().Name == meta.Name {
			return fmt.Errorf("name %q: %w", meta.Name, util.ErrDuplicateName)
		}
	}
	r.conns[meta.ID] = conn
	return nil
}

func (r *fakeRepo) Get(ctx context.Context, id string) (Connection, error) {
	conn, ok := r.conns[id]
	if !ok {
		return nil, fmt.Errorf("id %q: %w", id, util.ErrNotFound)
	}
	return conn, nil
}

func (r *fakeRepo) GetByName(ctx context.Context, name string) (Connection, error) {
	for _, conn := range r.conns {
		if conn.Meta().Name == name {
			return conn, nil
		}
	}
	return nil, fmt.Errorf("name %q: %w", name, util.ErrNotFound)
}

func (r *fakeRepo) Update(ctx context.Context, conn Connection) error {
	r.updates++
	if _, ok := r.conns[conn.Meta().ID]; !ok {
		return fmt.Errorf("id %q: %w", conn.Meta().ID, util.ErrNotFound)
	}
	r.conns[conn.Meta().ID] = conn
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.conns[id]; !ok {
		return fmt.Errorf("id %q: %w", id, util.ErrNotFound)
	}
	delete(r.conns, id)
	return nil
}

func (r *fakeRepo) List(ctx context.Context) ([]Connection, error) {
	out := make([]Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		out = append(out, conn)
	}
	return out, nil
}

func testTLSStore() *fakeTLSStore {
	return &fakeTLSStore{bundles: map[string]TLSBundle{}}
}

func TestManager_Create(t *testing.T) {
	repo := newFakeRepo()
	manager := NewManager(repo, testTLSStore(), nil)

	conn := &DockerConnection{
		Metadata: Metadata{Name: "local-engine", Kind: KindDocker},
		URL:      "unix:///var/run/docker.sock",
	}

	if err := manager.Create(context.Background(), conn); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if conn.ID == "" {
		t.Error("expected an id to be assigned at creation")
	}
	if repo.creates != 1 {
		t.Errorf("expected 1 repository create, got %d", repo.creates)
	}
}

func TestManager_Create_RequiresName(t *testing.T) {
	repo := newFakeRepo()
	manager := NewManager(repo, testTLSStore(), nil)

	conn := &DockerConnection{
		Metadata: Metadata{Kind: KindDocker},
		URL:      "unix:///var/run/docker.sock",
	}

	err := manager.Create(context.Background(), conn)
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	if !util.IsValidation(err) {
		t.Errorf("expected validation error, got %T: %v", err, err)
	}
	if repo.creates != 0 {
		t.Error("repository was touched despite validation failure")
	}
}

func TestManager_Create_RejectedCredentialNotPersisted(t *testing.T) {
	repo := newFakeRepo()
	manager := NewManager(repo, testTLSStore(), nil)

	conn := &DockerConnection{
		Metadata: Metadata{Name: "bad-engine", Kind: KindDocker},
		URL:      "ftp://10.0.0.5:2376",
	}

	err := manager.Create(context.Background(), conn)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if repo.creates != 0 {
		t.Error("rejected connection was persisted")
	}
}

func TestManager_Create_KindChecks(t *testing.T) {
	tests := []struct {
		name string
		conn Connection
	}{
		{
			name: "unknown kind",
			conn: &DockerConnection{
				Metadata: Metadata{Name: "engine", Kind: "mesos"},
				URL:      "unix:///var/run/docker.sock",
			},
		},
		{
			name: "kind does not match variant type",
			conn: &DockerConnection{
				Metadata: Metadata{Name: "engine", Kind: KindKubernetes},
				URL:      "unix:///var/run/docker.sock",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			manager := NewManager(repo, testTLSStore(), nil)

			err := manager.Create(context.Background(), tt.conn)
			if err == nil {
				t.Fatal("expected kind validation error")
			}

			if !util.IsValidation(err) {
				t.Fatalf("expected validation error, got %T: %v", err, err)
			}
			if repo.creates != 0 {
				t.Error("repository was touched despite kind failure")
			}
		})
	}
}

func TestManager_Create_DuplicateName(t *testing.T) {
	repo := newFakeRepo()
	manager := NewManager(repo, testTLSStore(), nil)

	first := &DockerConnection{
		Metadata: Metadata{Name: "shared-name", Kind: KindDocker},
		URL:      "unix:///var/run/docker.sock",
	}
	if err := manager.Create(context.Background(), first); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// The name is unique across variants, so a Kubernetes connection with
	// the same name is rejected too.
	second := &KubernetesConnection{
		Metadata: Metadata{Name: "shared-name", Local: true, Kind: KindKubernetes},
	}
	err := manager.Create(context.Background(), second)
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
	if !errors.Is(err, util.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got: %v", err)
	}
}

func TestManager_Update(t *testing.T) {
	repo := newFakeRepo()
	manager := NewManager(repo, testTLSStore(), nil)

	conn := &DockerConnection{
		Metadata: Metadata{Name: "engine", Kind: KindDocker},
		URL:      "unix:///var/run/docker.sock",
	}
	if err := manager.Create(context.Background(), conn); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	conn.URL = "tcp://10.0.0.5:2375"
	if err := manager.Update(context.Background(), conn); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if repo.updates != 1 {
		t.Errorf("expected 1 repository update, got %d", repo.updates)
	}
}

func TestManager_Update_RequiresID(t *testing.T) {
	manager := NewManager(newFakeRepo(), testTLSStore(), nil)

	conn := &DockerConnection{
		Metadata: Metadata{Name: "engine", Kind: KindDocker},
		URL:      "unix:///var/run/docker.sock",
	}

	err := manager.Update(context.Background(), conn)
	if err == nil {
		t.Fatal("expected error for missing id")
	}
	if !util.IsValidation(err) {
		t.Errorf("expected validation error, got %T: %v", err, err)
	}
}

func TestManager_Get_EquipsVariant(t *testing.T) {
	repo := newFakeRepo()
	store := testTLSStore()
	manager := NewManager(repo, store, nil)
	manager.SetProbeTimeout(3 * time.Second)

	conn := &DockerConnection{
		Metadata: Metadata{Name: "engine", Kind: KindDocker},
		URL:      "unix:///var/run/docker.sock",
	}
	if err := manager.Create(context.Background(), conn); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := manager.Get(context.Background(), conn.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	docker, ok := got.(*DockerConnection)
	if !ok {
		t.Fatalf("expected *DockerConnection, got %T", got)
	}
	if docker.tls == nil {
		t.Error("certificate store was not wired into the retrieved variant")
	}
	if docker.timeout != 3*time.Second {
		t.Errorf("probe timeout not applied, got %v", docker.timeout)
	}
}

func TestManager_GetByName(t *testing.T) {
	repo := newFakeRepo()
	manager := NewManager(repo, testTLSStore(), nil)

	conn := &KubernetesConnection{
		Metadata: Metadata{Name: "prod-cluster", Local: true, Kind: KindKubernetes},
	}
	if err := manager.Create(context.Background(), conn); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := manager.GetByName(context.Background(), "prod-cluster")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if _, ok := got.(*KubernetesConnection); !ok {
		t.Errorf("expected *KubernetesConnection, got %T", got)
	}

	_, err = manager.GetByName(context.Background(), "missing")
	if !util.IsNotFound(err) {
		t.Errorf("expected ErrNotFound for missing name, got: %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	repo := newFakeRepo()
	manager := NewManager(repo, testTLSStore(), nil)

	conn := &DockerConnection{
		Metadata: Metadata{Name: "engine", Kind: KindDocker},
		URL:      "unix:///var/run/docker.sock",
	}
	if err := manager.Create(context.Background(), conn); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := manager.Delete(context.Background(), conn.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err := manager.Get(context.Background(), conn.ID)
	if !util.IsNotFound(err) {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}
}

func TestManager_State_NotFound(t *testing.T) {
	manager := NewManager(newFakeRepo(), testTLSStore(), nil)

	_, err := manager.State(context.Background(), "missing-id")
	if !util.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestManager_State_ProbeIsTotal(t *testing.T) {
	repo := newFakeRepo()
	manager := NewManager(repo, testTLSStore(), nil)
	manager.SetProbeTimeout(time.Second)

	conn := &DockerConnection{
		Metadata: Metadata{Name: "engine", Kind: KindDocker},
		URL:      "unix:///nonexistent/docker.sock",
	}
	if err := manager.Create(context.Background(), conn); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	state, err := manager.State(context.Background(), conn.ID)
	if err != nil {
		t.Fatalf("State returned an error for a reachable record: %v", err)
	}
	if state.Healthy {
		t.Error("expected unhealthy state for unreachable engine")
	}
}

func TestManager_Descriptors(t *testing.T) {
	manager := NewManager(newFakeRepo(), testTLSStore(), nil)

	descriptors := manager.Descriptors()
	if len(descriptors) != 2 {
		t.Fatalf("expected 2 builtin descriptors, got %d", len(descriptors))
	}
	if descriptors[0].Kind != KindDocker || descriptors[1].Kind != KindKubernetes {
		t.Errorf("unexpected descriptor order: %v, %v", descriptors[0].Kind, descriptors[1].Kind)
	}
}
