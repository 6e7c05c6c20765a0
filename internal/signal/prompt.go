// Package signal defines the signal extraction contract: the fixed
// prompt sent to the oracle and the defensive parser that turns its
// response into a fully-populated VideoSignals vector.
package signal

// ExtractionPrompt instructs the oracle to emit the normalized signal
// vector. The key names are a contract with the parser; changing one
// here requires changing the matching default in parser.go.
const ExtractionPrompt = `Watch this short-form video and extract the quantitative signals below. Measure, do not editorialize.

Respond with ONLY a JSON object, no prose before or after:
{
  "format": "<talking_head|gameplay|demo|other>",
  "signals": {
    "hook": {
      "TTClaim": <seconds until the central claim or promise is stated>,
      "PB": <payoff promise strength, 0-5>,
      "Spec": <count of concrete specifics (numbers, names, results) in the first 3 seconds>,
      "QC": <1 if the hook opens with a question or curiosity gap, else 0>
    },
    "structure": {
      "BC": <number of distinct narrative beats, minimum 1>,
      "PM": <count of pattern interrupts or momentum shifts>,
      "PP": <true if the promised payoff actually arrives>,
      "LC": <true if the ending loops back to the opening>
    },
    "clarity": {
      "wordCount": <total words spoken>,
      "duration": <video length in seconds>,
      "SC": <sentence and concept complexity, 0-5 where 5 is hardest to follow>,
      "TJ": <count of abrupt topic jumps>,
      "RD": <redundancy, 0-5 where 5 means heavy repetition>
    },
    "delivery": {
      "LS": <vocal liveliness, 0-5>,
      "NS": <naturalness of speech, 0-5>,
      "pauseCount": <count of pauses longer than 1 second>,
      "fillerCount": <count of filler words (um, uh, like, you know)>,
      "EC": <true if energy stays consistent through the video>
    }
  },
  "transcript": "<full spoken transcript>",
  "beatTimestamps": [<start second of each narrative beat>]
}

Every numeric field must be a number, not a string. Omit nothing.`
