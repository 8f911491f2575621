package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "quiz",
			objectType:  "detail",
			identifier:  "12",
			expectedKey: "quizzy:quiz:detail:12",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "quiz",
			objectType:  "detail",
			identifier:  "12",
			paramsKey:   []string{},
			expectedKey: "quizzy:quiz:detail:12",
		},
		{
			name:        "with paramsKey",
			serviceName: "quiz",
			objectType:  "list",
			identifier:  "public",
			paramsKey:   []string{"Identification", "7"},
			expectedKey: "quizzy:quiz:list:public:Identification_7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...); got != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %v, want %v", got, tt.expectedKey)
			}
		})
	}
}

func TestQuizDetailKey(t *testing.T) {
	if got := QuizDetailKey(42); got != "quizzy:quiz:detail:42" {
		t.Errorf("QuizDetailKey() = %v", got)
	}
}
