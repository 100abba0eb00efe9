package kafka

import (
	"testing"
	"time"
)

func TestProducerOptions(t *testing.T) {
	cfg := defaultProducerConfig()
	for _, opt := range []ProducerOption{
		WithBrokers([]string{"kafka-1:9092", "kafka-2:9092"}),
		WithCompression("lz4"),
		WithRequiredAcks(1),
		WithMaxAttempts(5),
		WithBatching(10, 2048, 250*time.Millisecond),
		WithTimeouts(2*time.Second, 3*time.Second),
		WithHashByKey(false),
	} {
		opt(cfg)
	}

	if len(cfg.Brokers) != 2 {
		t.Errorf("brokers = %v, want 2 entries", cfg.Brokers)
	}
	if cfg.Compression != "lz4" || cfg.RequiredAcks != 1 || cfg.MaxAttempts != 5 {
		t.Errorf("delivery settings = %s/%d/%d, want lz4/1/5",
			cfg.Compression, cfg.RequiredAcks, cfg.MaxAttempts)
	}
	if cfg.BatchSize != 10 || cfg.BatchBytes != 2048 || cfg.Linger != 250*time.Millisecond {
		t.Errorf("batching = %d/%d/%v, want 10/2048/250ms", cfg.BatchSize, cfg.BatchBytes, cfg.Linger)
	}
	if cfg.WriteTimeout != 2*time.Second || cfg.ReadTimeout != 3*time.Second {
		t.Errorf("timeouts = %v/%v, want 2s/3s", cfg.WriteTimeout, cfg.ReadTimeout)
	}
	if cfg.HashByKey {
		t.Error("HashByKey = true, want false after opt-out")
	}
}

func TestWithBatchingZeroKeepsDefaults(t *testing.T) {
	def := defaultProducerConfig()
	cfg := defaultProducerConfig()
	WithBatching(0, 0, 0)(cfg)

	if cfg.BatchSize != def.BatchSize || cfg.BatchBytes != def.BatchBytes || cfg.Linger != def.Linger {
		t.Errorf("batching = %d/%d/%v, want defaults %d/%d/%v",
			cfg.BatchSize, cfg.BatchBytes, cfg.Linger, def.BatchSize, def.BatchBytes, def.Linger)
	}
}

func TestDefaultsFavorOrderedDelivery(t *testing.T) {
	cfg := defaultProducerConfig()
	if cfg.RequiredAcks != -1 {
		t.Errorf("RequiredAcks = %d, want -1", cfg.RequiredAcks)
	}
	if !cfg.HashByKey {
		t.Error("HashByKey = false, want true by default")
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatal("NewProducer() without brokers: expected error")
	}
}
