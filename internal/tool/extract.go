// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/talentsift/resume-extract/internal/pipeline"
)

// objectOutput is the output schema of every tool. Results carry
// timestamps, which are left to the JSON encoding rather than inferred.
var objectOutput = map[string]interface{}{"type": "object"}

// MetadataExtractResumeText describes the extract_resume_text tool.
var MetadataExtractResumeText = &mcp.Tool{
	Name: "extract_resume_text",
	Description: "Extract the candidate's full name, email address and contact number from plain resume text. " +
		"Each field is validated; the result is 'success' only when all three are present and valid, " +
		"otherwise 'failed' with the missing fields named in failureReason. " +
		"All plausible candidates found for each field are returned as well.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"text"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Plain text of the resume",
			},
			"file_name": map[string]interface{}{
				"type":        "string",
				"description": "Optional name reported in the result. Defaults to 'resume.txt'.",
			},
		},
	},
	OutputSchema: objectOutput,
}

// MetadataExtractResumeFile describes the extract_resume_file tool.
var MetadataExtractResumeFile = &mcp.Tool{
	Name: "extract_resume_file",
	Description: "Convert a resume file (.pdf, .doc or .docx) on the server's filesystem and extract the " +
		"candidate's full name, email address and contact number. Conversion failures are reported " +
		"as a failed result rather than an error.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"path"},
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path of the resume file",
			},
		},
	},
	OutputSchema: objectOutput,
}

// MetadataExtractResumeBatch describes the extract_resume_batch tool.
var MetadataExtractResumeBatch = &mcp.Tool{
	Name: "extract_resume_batch",
	Description: "Extract contact fields from up to 100 resume files and deduplicate the candidates by email, " +
		"keeping the most recent upload. Files with unsupported extensions are skipped and listed.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"paths"},
		"properties": map[string]interface{}{
			"paths": map[string]interface{}{
				"type":        "array",
				"description": "Paths of the resume files, processed in order",
				"items":       map[string]interface{}{"type": "string"},
			},
		},
	},
	OutputSchema: objectOutput,
}

// InputExtractResumeText is the input for the ExtractResumeText tool.
type InputExtractResumeText struct {
	Text     string `json:"text"`
	FileName string `json:"file_name"`
}

// InputExtractResumeFile is the input for the ExtractResumeFile tool.
type InputExtractResumeFile struct {
	Path string `json:"path"`
}

// InputExtractResumeBatch is the input for the ExtractResumeBatch tool.
type InputExtractResumeBatch struct {
	Paths []string `json:"paths"`
}

// OutputExtractResume is the output of the single-document tools.
type OutputExtractResume struct {
	Result *pipeline.Result `json:"result"`
}

// OutputExtractResumeBatch is the output of the batch tool.
type OutputExtractResumeBatch struct {
	Report *pipeline.BatchReport `json:"report"`
}

// Tools exposes an Extractor as MCP tools.
type Tools struct {
	x *pipeline.Extractor
}

// New creates the tool set over x.
func New(x *pipeline.Extractor) *Tools {
	return &Tools{x: x}
}

// Register adds every tool to srv.
func (t *Tools) Register(srv *mcp.Server) {
	mcp.AddTool(srv, MetadataExtractResumeText, t.ExtractResumeText)
	mcp.AddTool(srv, MetadataExtractResumeFile, t.ExtractResumeFile)
	mcp.AddTool(srv, MetadataExtractResumeBatch, t.ExtractResumeBatch)
}

// ExtractResumeText runs field extraction over the provided text.
func (t *Tools) ExtractResumeText(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractResumeText) (*mcp.CallToolResult, OutputExtractResume, error) {
	if input.Text == "" {
		return nil, OutputExtractResume{}, fmt.Errorf("text is required")
	}

	fileName := input.FileName
	if fileName == "" {
		fileName = "resume.txt"
	}

	res := t.x.ExtractText(ctx, input.Text, nil, fileName)
	return nil, OutputExtractResume{Result: res}, nil
}

// ExtractResumeFile converts and extracts the file at the given path.
func (t *Tools) ExtractResumeFile(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractResumeFile) (*mcp.CallToolResult, OutputExtractResume, error) {
	if input.Path == "" {
		return nil, OutputExtractResume{}, fmt.Errorf("path is required")
	}

	res := t.x.ExtractCandidate(ctx, input.Path, filepath.Base(input.Path))
	return nil, OutputExtractResume{Result: res}, nil
}

// ExtractResumeBatch extracts and deduplicates a batch of files.
func (t *Tools) ExtractResumeBatch(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractResumeBatch) (*mcp.CallToolResult, OutputExtractResumeBatch, error) {
	if len(input.Paths) == 0 {
		return nil, OutputExtractResumeBatch{}, fmt.Errorf("paths is required")
	}

	inputs := make([]pipeline.Input, len(input.Paths))
	for i, p := range input.Paths {
		inputs[i] = pipeline.Input{Path: p, FileName: filepath.Base(p)}
	}

	report, err := t.x.ExtractBatch(ctx, inputs)
	if err != nil {
		return nil, OutputExtractResumeBatch{}, err
	}
	return nil, OutputExtractResumeBatch{Report: report}, nil
}
