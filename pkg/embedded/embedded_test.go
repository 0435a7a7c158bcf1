package embedded

import (
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/tutorial/steps.yaml":       {Data: []byte("steps: []\n")},
		"data/tutorial/gates.yaml":       {Data: []byte("{}\n")},
		"data/strings/ClinicStrings.txt": {Data: []byte("[KEY]\n值\n")},
	}
}

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	Reset()
	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}

	Init(testFS())
	defer Reset()
	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}

	Init(nil)
	if IsInitialized() {
		t.Error("Init(nil) should leave the package uninitialized")
	}
}

// TestNotInitialized 未初始化时所有访问都返回同一错误
func TestNotInitialized(t *testing.T) {
	Reset()
	const want = "embedded package not initialized, call Init() first"

	calls := map[string]func() error{
		"Open":     func() error { _, err := Open("data/x"); return err },
		"ReadFile": func() error { _, err := ReadFile("data/x"); return err },
		"Glob":     func() error { _, err := Glob("data/*"); return err },
		"ReadDir":  func() error { _, err := ReadDir("data"); return err },
	}
	for name, call := range calls {
		err := call()
		if err == nil || err.Error() != want {
			t.Errorf("%s: got %v, want %q", name, err, want)
		}
	}
	if Exists("data/tutorial/steps.yaml") {
		t.Error("Exists() should be false before Init()")
	}
}

// TestInvalidPrefix 路径必须以 data/ 开头
func TestInvalidPrefix(t *testing.T) {
	Init(testFS())
	defer Reset()

	_, err := ReadFile("assets/test.png")
	if err == nil {
		t.Fatal("Expected error for invalid path prefix")
	}
	if err.Error() != "unknown resource path prefix: assets/test.png (must start with 'data/')" {
		t.Errorf("Unexpected error message: %v", err)
	}
}

// TestReadAndNormalize 读取文件并规范化路径
func TestReadAndNormalize(t *testing.T) {
	Init(testFS())
	defer Reset()

	tests := []struct {
		path string
		want string
	}{
		{"data/tutorial/steps.yaml", "steps: []\n"},
		{"./data/tutorial/gates.yaml", "{}\n"},
		{"data/strings/ClinicStrings.txt", "[KEY]\n值\n"},
	}
	for _, tt := range tests {
		got, err := ReadFile(tt.path)
		if err != nil {
			t.Errorf("ReadFile(%q) error: %v", tt.path, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("ReadFile(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	if !Exists("data/tutorial/steps.yaml") || Exists("data/tutorial/missing.yaml") {
		t.Error("Exists() mismatch")
	}

	matches, err := Glob("data/tutorial/*.yaml")
	if err != nil || len(matches) != 2 {
		t.Errorf("Glob() = %v, %v; want 2 matches", matches, err)
	}

	entries, err := ReadDir("data")
	if err != nil || len(entries) != 2 {
		t.Errorf("ReadDir(data) = %d entries, %v; want 2", len(entries), err)
	}
}
