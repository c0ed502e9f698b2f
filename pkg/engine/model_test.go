package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildModel(t *testing.T) {
	tests := []struct {
		name    string
		parent  Properties
		mapping []PropertyMapping
		want    Model
	}{
		{
			name:    "flat",
			parent:  Properties{"AppId": "abc", "Name": "app"},
			mapping: Map("AppId"),
			want:    Model{"AppId": "abc"},
		},
		{
			name:    "nested child path",
			parent:  Properties{"ProjectId": "p-1"},
			mapping: []PropertyMapping{{Child: "AccessPolicyResource.Project.Id", Parent: "ProjectId"}},
			want: Model{
				"AccessPolicyResource": map[string]any{
					"Project": map[string]any{"Id": "p-1"},
				},
			},
		},
		{
			name:    "nested parent path",
			parent:  Properties{"Config": map[string]any{"Arn": "arn:aws:x"}},
			mapping: []PropertyMapping{{Child: "ConfigArn", Parent: "Config.Arn"}},
			want:    Model{"ConfigArn": "arn:aws:x"},
		},
		{
			name:    "indexed parent path",
			parent:  Properties{"Tags": []any{map[string]any{"Key": "env"}}},
			mapping: []PropertyMapping{{Child: "TagKey", Parent: "Tags[0].Key"}},
			want:    Model{"TagKey": "env"},
		},
		{
			name:   "multiple entries merge",
			parent: Properties{"ApiId": "a-1", "StageName": "prod"},
			mapping: []PropertyMapping{
				{Child: "ApiId", Parent: "ApiId"},
				{Child: "StageName", Parent: "StageName"},
			},
			want: Model{"ApiId": "a-1", "StageName": "prod"},
		},
		{
			name:    "renamed",
			parent:  Properties{"Id": "x"},
			mapping: []PropertyMapping{{Child: "AId", Parent: "Id"}},
			want:    Model{"AId": "x"},
		},
		{
			name:    "empty mapping",
			parent:  Properties{"Id": "x"},
			mapping: nil,
			want:    Model{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildModel(tt.parent, tt.mapping)
			if err != nil {
				t.Fatalf("BuildModel() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildModel() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildModel_Errors(t *testing.T) {
	tests := []struct {
		name     string
		parent   Properties
		mapping  []PropertyMapping
		wantCode string
	}{
		{
			name:     "absent property",
			parent:   Properties{"Other": "x"},
			mapping:  Map("AppId"),
			wantCode: ErrCodeMappingUnresolved,
		},
		{
			name:     "null property",
			parent:   Properties{"AppId": nil},
			mapping:  Map("AppId"),
			wantCode: ErrCodeMappingUnresolved,
		},
		{
			name:     "empty child path",
			parent:   Properties{"AppId": "x"},
			mapping:  []PropertyMapping{{Child: "", Parent: "AppId"}},
			wantCode: ErrCodeInvalidMapping,
		},
		{
			name:     "invalid expression",
			parent:   Properties{"AppId": "x"},
			mapping:  []PropertyMapping{{Child: "AppId", Parent: "AppId.["}},
			wantCode: ErrCodeInvalidMapping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildModel(tt.parent, tt.mapping)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !IsConfiguration(err) {
				t.Errorf("Expected configuration error, got %v", err)
			}
			if code := CodeOf(err); code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, code)
			}
		})
	}
}
