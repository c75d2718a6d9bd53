package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/hems/core/metrics"
	"github.com/kilianp07/hems/core/model"
)

// generateCert writes a self-signed certificate usable as client cert and CA.
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	caFile = filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))
	require.NoError(t, os.WriteFile(caFile, certPEM, 0o600))
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	tlsCfg, err := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}.LoadTLSConfig()
	require.NoError(t, err)
	assert.Len(t, tlsCfg.Certificates, 1)
	assert.NotNil(t, tlsCfg.RootCAs)

	_, err = Config{UseTLS: true}.LoadTLSConfig()
	assert.ErrorContains(t, err, "requires client_cert")
}

func TestNewClientOptions(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p",
		LWTTopic: "hems/status", LWTPayload: "offline", LWTQoS: 1})
	require.NoError(t, err)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, "p", opts.Password)
	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "hems/status", opts.WillTopic)
	assert.Equal(t, "offline", string(opts.WillPayload))

	opts, err = NewClientOptions(Config{Broker: "tcp://localhost:1883", Username: "u", AuthMethod: "certificate"})
	require.NoError(t, err)
	assert.Empty(t, opts.Username)
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Regexp(t, `^hems-[0-9a-f-]{36}$`, c.ClientID)
	assert.Equal(t, "hems", c.TopicPrefix)
	assert.ErrorContains(t, c.Validate(), "broker")
	c.Broker = "tcp://b:1883"
	c.QoS = 3
	assert.Error(t, c.Validate())
}

func newTestPublisher(t *testing.T, mc *mockClient, cfg Config) *SchedulePublisher {
	t.Helper()
	old := newMQTTClient
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = old })
	if cfg.Broker == "" {
		cfg.Broker = "tcp://localhost:1883"
	}
	p, err := NewSchedulePublisher(cfg)
	require.NoError(t, err)
	return p
}

func TestSchedulePublisher_RecordDay(t *testing.T) {
	mc := &mockClient{}
	p := newTestPublisher(t, mc, Config{QoS: 1})
	assert.True(t, mc.connected)

	day := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	res := model.DayResult{
		Day:             day,
		Timestamps:      []time.Time{day, day.Add(time.Hour)},
		ImportKW:        []float64{1, 0},
		ExportKW:        []float64{0, 2},
		BatteryKW:       []float64{-1, 0.5},
		PVKW:            []float64{0, 3},
		BatteryKWh:      []float64{2, 1.5},
		ImportPrice:     []float64{0.3, 0.3},
		ExportPrice:     []float64{0.1, 0.1},
		BatteryKWhAtEoD: 1.5,
		Cost:            model.Cost{Total: 0.1, OnlyUncontrolledLoad: 0.6},
	}
	require.NoError(t, p.RecordDay(metrics.DayEvent{Scenario: "10kwh", RunID: "r1", Result: res}))

	require.Len(t, mc.published, 1)
	msg := mc.published[0]
	assert.Equal(t, "hems/10kwh/schedule/2023-07-01", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var got ScheduleMessage
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "r1", got.RunID)
	assert.Equal(t, "2023-07-01", got.Day)
	require.Len(t, got.Hours, 2)
	assert.Equal(t, 0.5, got.Hours[1].BatteryKW)
	assert.Equal(t, 1.5, got.BatteryKWhAtEoD)

	require.NoError(t, p.Close())
	assert.True(t, mc.disconnected)
}

func TestSchedulePublisher_FailureAndSummaryTopics(t *testing.T) {
	mc := &mockClient{}
	p := newTestPublisher(t, mc, Config{TopicPrefix: "house", NoRetain: true})

	require.NoError(t, p.RecordFailure(metrics.FailureEvent{Kind: "infeasible", Err: "boom", Day: time.Date(2023, 7, 2, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, p.RecordRun(metrics.RunEvent{Scenario: "s", Summary: model.Summary{Days: 2, Total: 1, OnlyUncontrolledLoad: 3}}))

	require.Len(t, mc.published, 2)
	assert.Equal(t, "house/default/failure", mc.published[0].topic)
	assert.False(t, mc.published[0].retained)
	assert.Contains(t, string(mc.published[0].payload), `"day":"2023-07-02"`)
	assert.Equal(t, "house/s/summary", mc.published[1].topic)
	assert.False(t, mc.published[1].retained)
	assert.Contains(t, string(mc.published[1].payload), `"savings":2`)
}

func TestSchedulePublisher_Retry(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("net fail"), nil}}
	p := newTestPublisher(t, mc, Config{MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, p.RecordRun(metrics.RunEvent{Scenario: "s"}))
	assert.Len(t, mc.published, 2)

	mc = &mockClient{publishErrs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	p = newTestPublisher(t, mc, Config{MaxRetries: 1, BackoffMS: 1})
	err := p.RecordRun(metrics.RunEvent{Scenario: "s"})
	assert.ErrorContains(t, err, "b")
	assert.Len(t, mc.published, 2)
}

func TestSchedulePublisher_ConnectError(t *testing.T) {
	mc := &mockClient{connectErr: errors.New("refused")}
	old := newMQTTClient
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	defer func() { newMQTTClient = old }()

	_, err := NewSchedulePublisher(Config{Broker: "tcp://localhost:1883"})
	assert.ErrorContains(t, err, "refused")
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// mockClient implements pahoClient for tests.
type mockClient struct {
	opts         *paho.ClientOptions
	published    []published
	publishErrs  []error
	connectErr   error
	connected    bool
	disconnected bool
}

func (m *mockClient) IsConnected() bool { return m.connected }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	m.connected = true
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) { m.disconnected = true; m.connected = false }
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, published{topic: topic, qos: qos, retained: retained, payload: b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
