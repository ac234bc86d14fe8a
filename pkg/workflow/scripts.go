package workflow

import (
	"encoding/json"
	"fmt"
)

// Function node scripts. They run inside n8n, where $json is the incoming
// item and the script returns the outgoing items.

const normaliseScript = `const input = $json;
const normaliseList = (value, fallback) => {
  if (!value) {
    return fallback;
  }
  const items = value
    .split(',')
    .map((entry) => entry.trim().replace(/^@/, ''))
    .filter(Boolean);
  return items.length ? items : fallback;
};

return [
  {
    json: {
      generateBody: {
        topic: input.topic,
        niche: input.niche,
        tone: input.tone || %s,
        callToAction: input.callToAction,
        includeImage: input.generateImage ?? %t,
        hashtags: normaliseList(input.hashtags, %s),
      },
      engagementFilters: normaliseList(input.engagementFilters, %s),
      dmTargets: normaliseList(input.dmTargets, %s),
    },
  },
];`

const preparePayloadsScript = `const payload = $json;
const brief = $node[%s].json;
return [
  {
    json: {
      publishBody: {
        tweet: payload.tweet,
        thread: payload.thread,
        altText: payload.altText,
        imageBase64: payload.imageBase64,
      },
      dmBody: {
        message: payload.dmMessage,
      },
      engagementTargets: payload.engagementTargets,
      dmTargets: brief.dmTargets,
    },
  },
];`

const hydrateEngagementScript = `const targets = $json.engagementTargets || [];
const actions = [];

for (const query of targets) {
  actions.push({
    searchQuery: query,
    action: 'like',
    limit: 2,
  });
  actions.push({
    searchQuery: query,
    action: 'retweet',
    limit: 1,
  });
}

return [{ json: { engagements: actions } }];`

const prepareDMScript = `const handles = $json.dmTargets || %s;
const recipients = handles.map((handle) => ({ handle }));

return [{ json: { message: $json.dmBody.message, recipients } }];`

func normaliseCode(opts Options) string {
	hashtags := jsLiteral(nonNil(opts.EngagementHashtags))

	return fmt.Sprintf(normaliseScript,
		jsLiteral(opts.Tone),
		opts.IncludeImage,
		hashtags,
		hashtags,
		jsLiteral(nonNil(opts.DMHandles)),
	)
}

func preparePayloadsCode() string {
	return fmt.Sprintf(preparePayloadsScript, jsLiteral(NameNormalise))
}

func prepareDMCode(opts Options) string {
	return fmt.Sprintf(prepareDMScript, jsLiteral(nonNil(opts.DMHandles)))
}

// jsLiteral renders v as a JSON value, which is also a valid JavaScript
// literal for strings and string lists.
func jsLiteral(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}

	return string(data)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
